// Package significator decides which planets stand for the asker and for
// the matter asked about.
package significator

import (
	"github.com/okian/horary/internal/domain/model"
	"github.com/okian/horary/internal/domain/tables"
)

// Classification is the house a question is about.
type Classification struct {
	House      int
	Topic      string
	Keyword    string
	Confidence model.Confidence
}

// HouseClassifier maps question text to a house.
type HouseClassifier interface {
	Classify(question string) Classification
}

// KeywordHouseClassifier walks an ordered topic list; the first topic with a
// whole-word keyword match wins. Unmatched questions get the default topic
// with low confidence.
type KeywordHouseClassifier struct {
	topics   []tables.Topic
	fallback tables.Topic
}

// NewKeywordHouseClassifier creates a classifier from table topics.
func NewKeywordHouseClassifier(topics []tables.Topic, fallback tables.Topic) *KeywordHouseClassifier {
	return &KeywordHouseClassifier{topics: topics, fallback: fallback}
}

// Classify implements HouseClassifier.
func (c *KeywordHouseClassifier) Classify(question string) Classification {
	text := tables.NormalizeText(question)
	for _, tp := range c.topics {
		if kw, ok := tables.MatchKeyword(text, tp.Keywords); ok {
			return Classification{House: tp.House, Topic: tp.Name, Keyword: kw, Confidence: model.ConfidenceHigh}
		}
	}
	return Classification{House: c.fallback.House, Topic: c.fallback.Name, Confidence: model.ConfidenceLow}
}

// Resolver assigns significators.
type Resolver struct {
	t          *tables.Tables
	classifier HouseClassifier
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHouseClassifier replaces the keyword classifier.
func WithHouseClassifier(c HouseClassifier) Option {
	return func(r *Resolver) {
		if c != nil {
			r.classifier = c
		}
	}
}

// New creates a Resolver over t.
func New(t *tables.Tables, opts ...Option) *Resolver {
	r := &Resolver{t: t, classifier: NewKeywordHouseClassifier(t.Topics, t.DefaultTopic)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve assigns the querent ruler (ruler of the 1st), the Moon as
// co-significator, and the ruler of the quesited house. Both rulers may be
// the same planet.
func (r *Resolver) Resolve(snap model.ChartSnapshot, question string) (model.SignificatorAssignment, error) {
	cls := r.classifier.Classify(question)
	house := cls.House
	if house < 1 || house > model.SignCount {
		house = r.t.DefaultTopic.House
	}

	querent, err := r.rulerOf(snap, 1)
	if err != nil {
		return model.SignificatorAssignment{}, err
	}
	quesited, err := r.rulerOf(snap, house)
	if err != nil {
		return model.SignificatorAssignment{}, err
	}

	return model.SignificatorAssignment{
		QuerentRuler:          querent,
		QuerentCoSignificator: model.Moon,
		QuesitedRuler:         quesited,
		QuesitedHouse:         house,
		Topic:                 cls.Topic,
		MatchedKeyword:        cls.Keyword,
		Confidence:            cls.Confidence,
		SameRuler:             querent == quesited,
	}, nil
}

func (r *Resolver) rulerOf(snap model.ChartSnapshot, house int) (model.Body, error) {
	sign := snap.Cusp(house).Sign
	if !sign.Valid() {
		return "", &InvariantViolation{House: house, Sign: int(sign)}
	}
	return r.t.Ruler(sign), nil
}
