package validator

import (
	"go.uber.org/zap"

	"github.com/arcanaland/planche/internal/card"
)

// Reason tells why a card was kept off the planches
type Reason string

const (
	MissingPhoto    Reason = "missing photo"
	UnknownType     Reason = "unrecognized type"
	AlreadyRendered Reason = "already rendered"
)

// Rejection is a card excluded from this run
type Rejection struct {
	Card   card.Card
	Reason Reason
}

type Results struct {
	Accepted []card.Card
	Rejected []Rejection
}

// Count returns how many cards were rejected for reason
func (r Results) Count(reason Reason) int {
	n := 0
	for _, rej := range r.Rejected {
		if rej.Reason == reason {
			n++
		}
	}
	return n
}

// Rendered is the part of the ledger the validator needs
type Rendered interface {
	Contains(number int) bool
}

type Validator struct {
	rendered Rendered
	log      *zap.Logger
}

func NewValidator(rendered Rendered, log *zap.Logger) *Validator {
	return &Validator{
		rendered: rendered,
		log:      log,
	}
}

// Filter keeps the cards that can be rendered, in their original order
func (v *Validator) Filter(cards []card.Card) Results {
	var results Results
	for _, c := range cards {
		if reason, ok := v.check(&c); !ok {
			results.Rejected = append(results.Rejected, Rejection{Card: c, Reason: reason})
			v.log.Warn("Card excluded",
				zap.Int("number", c.Number), zap.String("title", c.Title), zap.String("reason", string(reason)))
			continue
		}
		results.Accepted = append(results.Accepted, c)
	}
	return results
}

func (v *Validator) check(c *card.Card) (Reason, bool) {
	if !c.HasPhoto() {
		return MissingPhoto, false
	}
	if !c.HasColors() {
		return UnknownType, false
	}
	if v.rendered != nil && v.rendered.Contains(c.Number) {
		return AlreadyRendered, false
	}
	return "", true
}
