package models

import (
	"fmt"
	"strings"
)

// Label is a disease class produced by the leaf classifier.
type Label string

// The closed label set, in classifier output order.
const (
	PepperBellBacterialSpot Label = "Pepper__bell___Bacterial_spot"
	PepperBellHealthy       Label = "Pepper__bell___healthy"
	PotatoEarlyBlight       Label = "Potato___Early_blight"
	PotatoLateBlight        Label = "Potato___Late_blight"
	PotatoHealthy           Label = "Potato___healthy"
	TomatoBacterialSpot     Label = "Tomato_Bacterial_spot"
	TomatoEarlyBlight       Label = "Tomato_Early_blight"
	TomatoLateBlight        Label = "Tomato_Late_blight"
	TomatoLeafMold          Label = "Tomato_Leaf_Mold"
	TomatoSeptoriaLeafSpot  Label = "Tomato_Septoria_leaf_spot"
	TomatoSpiderMites       Label = "Tomato_Spider_mites_Two-spotted_spider_mite"
	TomatoTargetSpot        Label = "Tomato__Target_Spot"
	TomatoYellowLeafCurl    Label = "Tomato__Tomato_YellowLeaf_Curl_Virus"
	TomatoMosaicVirus       Label = "Tomato__Tomato_mosaic_virus"
	TomatoHealthy           Label = "Tomato_healthy"
)

var labels = [...]Label{
	PepperBellBacterialSpot,
	PepperBellHealthy,
	PotatoEarlyBlight,
	PotatoLateBlight,
	PotatoHealthy,
	TomatoBacterialSpot,
	TomatoEarlyBlight,
	TomatoLateBlight,
	TomatoLeafMold,
	TomatoSeptoriaLeafSpot,
	TomatoSpiderMites,
	TomatoTargetSpot,
	TomatoYellowLeafCurl,
	TomatoMosaicVirus,
	TomatoHealthy,
}

// NumLabels is the size of the classifier output layer.
const NumLabels = len(labels)

// Labels returns a copy of the label set in classifier output order.
func Labels() []Label {
	out := make([]Label, NumLabels)
	copy(out, labels[:])
	return out
}

// LabelAt maps a classifier output index to its label.
func LabelAt(i int) (Label, error) {
	if i < 0 || i >= NumLabels {
		return "", fmt.Errorf("label index %d out of range [0,%d)", i, NumLabels)
	}
	return labels[i], nil
}

// ParseLabel returns the label whose raw form equals s.
func ParseLabel(s string) (Label, error) {
	l := Label(s)
	if !l.Valid() {
		return "", fmt.Errorf("unknown label %q", s)
	}
	return l, nil
}

// Valid reports whether l is part of the label set.
func (l Label) Valid() bool {
	for _, known := range labels {
		if l == known {
			return true
		}
	}
	return false
}

// DisplayName replaces every underscore with a space.
func (l Label) DisplayName() string {
	return strings.ReplaceAll(string(l), "_", " ")
}

func (l Label) String() string { return string(l) }
