package document

import "fmt"

// Reliability grades how trustworthy a source is. Higher ranks outrank lower
// ones when the fact-checker weighs conflicting claims.
type Reliability string

const (
	ReliabilityOfficial      Reliability = "OFFICIAL"
	ReliabilityAcademic      Reliability = "ACADEMIC"
	ReliabilityAuthoritative Reliability = "AUTHORITATIVE"
	ReliabilityReputable     Reliability = "REPUTABLE"
	ReliabilityCommunity     Reliability = "COMMUNITY"
	ReliabilityUncertain     Reliability = "UNCERTAIN"
)

var validReliabilities = map[Reliability]bool{
	ReliabilityOfficial:      true,
	ReliabilityAcademic:      true,
	ReliabilityAuthoritative: true,
	ReliabilityReputable:     true,
	ReliabilityCommunity:     true,
	ReliabilityUncertain:     true,
}

var reliabilityRank = map[Reliability]int{
	ReliabilityOfficial:      6,
	ReliabilityAcademic:      5,
	ReliabilityAuthoritative: 4,
	ReliabilityReputable:     3,
	ReliabilityCommunity:     2,
	ReliabilityUncertain:     1,
}

// Valid reports whether r is a recognized reliability grade.
func (r Reliability) Valid() bool {
	return validReliabilities[r]
}

// Rank returns the ordinal position of r, highest first. Unknown grades
// rank zero, below UNCERTAIN.
func (r Reliability) Rank() int {
	return reliabilityRank[r]
}

// Validate returns an error if the reliability is not recognized.
func (r Reliability) Validate() error {
	if !r.Valid() {
		return fmt.Errorf("invalid reliability %q (must be OFFICIAL, ACADEMIC, AUTHORITATIVE, REPUTABLE, COMMUNITY, or UNCERTAIN)", r)
	}
	return nil
}

// Confidence expresses how sure a reviewing agent is of its verdict.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

var validConfidences = map[Confidence]bool{
	ConfidenceHigh:   true,
	ConfidenceMedium: true,
	ConfidenceLow:    true,
}

var confidenceRank = map[Confidence]int{
	ConfidenceHigh:   3,
	ConfidenceMedium: 2,
	ConfidenceLow:    1,
}

// Valid reports whether c is a recognized confidence level.
func (c Confidence) Valid() bool {
	return validConfidences[c]
}

// Rank returns the ordinal position of c, highest first. Unknown levels
// rank zero.
func (c Confidence) Rank() int {
	return confidenceRank[c]
}

// Validate returns an error if the confidence is not recognized.
func (c Confidence) Validate() error {
	if !c.Valid() {
		return fmt.Errorf("invalid confidence %q (must be HIGH, MEDIUM, or LOW)", c)
	}
	return nil
}

// Action is a reviewing agent's recommended next step for the document.
type Action string

const (
	ActionApprove Action = "APPROVE"
	ActionRevise  Action = "REVISE"
	ActionReject  Action = "REJECT"
)

var validActions = map[Action]bool{
	ActionApprove: true,
	ActionRevise:  true,
	ActionReject:  true,
}

// Valid reports whether a is a recognized action.
func (a Action) Valid() bool {
	return validActions[a]
}

// Validate returns an error if the action is not recognized.
func (a Action) Validate() error {
	if !a.Valid() {
		return fmt.Errorf("invalid action %q (must be APPROVE, REVISE, or REJECT)", a)
	}
	return nil
}
