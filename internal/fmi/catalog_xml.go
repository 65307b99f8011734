package fmi

import "encoding/xml"

// The structs below mirror the FMI 2.0 modelDescription.xml schema closely
// enough to decode every attribute this package cares about. Unknown
// elements/attributes are ignored by encoding/xml, which is treated as an
// external collaborator (spec §1.c) rather than reimplemented.

type rawModelDescription struct {
	XMLName xml.Name `xml:"fmiModelDescription"`

	Attrs []xml.Attr `xml:",any,attr"`

	ModelExchange    *rawCapabilitySection `xml:"ModelExchange"`
	CoSimulation     *rawCapabilitySection `xml:"CoSimulation"`
	DefaultExperiment *rawDefaultExperiment `xml:"DefaultExperiment"`
	UnitDefinitions  *rawUnitDefinitions    `xml:"UnitDefinitions"`
	ModelVariables   *rawModelVariables     `xml:"ModelVariables"`
	ModelStructure   *rawModelStructure     `xml:"ModelStructure"`
}

type rawCapabilitySection struct {
	Attrs []xml.Attr `xml:",any,attr"`
}

func (s *rawCapabilitySection) attr(name string) (string, bool) {
	if s == nil {
		return "", false
	}
	for _, a := range s.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

type rawDefaultExperiment struct {
	StartTime *float64 `xml:"startTime,attr"`
	StopTime  *float64 `xml:"stopTime,attr"`
	StepSize  *float64 `xml:"stepSize,attr"`
	Tolerance *float64 `xml:"tolerance,attr"`
}

type rawUnitDefinitions struct {
	Units []rawUnit `xml:"Unit"`
}

type rawUnit struct {
	Name        string           `xml:"name,attr"`
	BaseUnit    *rawBaseUnit     `xml:"BaseUnit"`
	DisplayUnit []rawDisplayUnit `xml:"DisplayUnit"`
}

type rawBaseUnit struct {
	Attrs []xml.Attr `xml:",any,attr"`
}

type rawDisplayUnit struct {
	Name   string  `xml:"name,attr"`
	Factor float64 `xml:"factor,attr"`
	Offset float64 `xml:"offset,attr"`
}

type rawModelVariables struct {
	Variables []rawScalarVariable `xml:"ScalarVariable"`
}

type rawScalarVariable struct {
	Name           string  `xml:"name,attr"`
	ValueReference uint32  `xml:"valueReference,attr"`
	Description    string  `xml:"description,attr"`
	Variability    string  `xml:"variability,attr"`
	Causality      string  `xml:"causality,attr"`
	Initial        string  `xml:"initial,attr"`
	Real           *rawRealType `xml:"Real"`
	Integer        *rawIntType  `xml:"Integer"`
	Boolean        *rawBoolType `xml:"Boolean"`
	String         *rawStringType `xml:"String"`
	Enumeration    *rawEnumType `xml:"Enumeration"`
}

type rawRealType struct {
	DeclaredType string   `xml:"declaredType,attr"`
	Unit         string   `xml:"unit,attr"`
	Start        *float64 `xml:"start,attr"`
	Derivative   *int     `xml:"derivative,attr"`
	Min          *float64 `xml:"min,attr"`
	Max          *float64 `xml:"max,attr"`
}

type rawIntType struct {
	Start *int64 `xml:"start,attr"`
	Min   *int64 `xml:"min,attr"`
	Max   *int64 `xml:"max,attr"`
}

type rawBoolType struct {
	Start *bool `xml:"start,attr"`
}

type rawStringType struct {
	Start string `xml:"start,attr"`
}

type rawEnumType struct {
	DeclaredType string `xml:"declaredType,attr"`
	Start        *int64 `xml:"start,attr"`
}

type rawModelStructure struct {
	Outputs         *rawDependencySection `xml:"Outputs"`
	Derivatives     *rawDependencySection `xml:"Derivatives"`
	InitialUnknowns *rawDependencySection `xml:"InitialUnknowns"`
}

type rawDependencySection struct {
	Unknowns []rawUnknown `xml:"Unknown"`
}

type rawUnknown struct {
	Index           int    `xml:"index,attr"`
	Dependencies    string `xml:"dependencies,attr"`
	DependenciesKind string `xml:"dependenciesKind,attr"`
}
