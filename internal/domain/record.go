package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Field is a backend field name as stored by the record repositories.
type Field string

const (
	FieldEndYear    Field = "end_year"
	FieldIntensity  Field = "intensity"
	FieldSector     Field = "sector"
	FieldTopic      Field = "topic"
	FieldInsight    Field = "insight"
	FieldURL        Field = "url"
	FieldRegion     Field = "region"
	FieldStartYear  Field = "start_year"
	FieldImpact     Field = "impact"
	FieldAdded      Field = "added"
	FieldPublished  Field = "published"
	FieldCountry    Field = "country"
	FieldRelevance  Field = "relevance"
	FieldPestle     Field = "pestle"
	FieldSource     Field = "source"
	FieldTitle      Field = "title"
	FieldLikelihood Field = "likelihood"
)

// FilterableFields lists the fields a dashboard user can constrain, in widget order.
var FilterableFields = []Field{
	FieldEndYear,
	FieldTopic,
	FieldSector,
	FieldRegion,
	FieldPestle,
	FieldSource,
	FieldCountry,
}

// RecordFields lists every stored column in dataset order.
var RecordFields = []Field{
	FieldEndYear, FieldIntensity, FieldSector, FieldTopic, FieldInsight, FieldURL,
	FieldRegion, FieldStartYear, FieldImpact, FieldAdded, FieldPublished, FieldCountry,
	FieldRelevance, FieldPestle, FieldSource, FieldTitle, FieldLikelihood,
}

// IsFilterable reports whether f may appear as a predicate key.
func (f Field) IsFilterable() bool {
	for _, candidate := range FilterableFields {
		if candidate == f {
			return true
		}
	}
	return false
}

// Record is one analytical data point. Records are treated as immutable once fetched.
type Record struct {
	EndYear    *int   `json:"end_year"`
	Intensity  int    `json:"intensity"`
	Sector     string `json:"sector"`
	Topic      string `json:"topic"`
	Insight    string `json:"insight"`
	URL        string `json:"url"`
	Region     string `json:"region"`
	StartYear  string `json:"start_year"`
	Impact     string `json:"impact"`
	Added      string `json:"added"`
	Published  string `json:"published"`
	Country    string `json:"country"`
	Relevance  int    `json:"relevance"`
	Pestle     string `json:"pestle"`
	Source     string `json:"source"`
	Title      string `json:"title"`
	Likelihood int    `json:"likelihood"`
}

// Value returns the string form of a field, empty when the field is unset.
func (r Record) Value(f Field) string {
	switch f {
	case FieldEndYear:
		if r.EndYear == nil {
			return ""
		}
		return strconv.Itoa(*r.EndYear)
	case FieldIntensity:
		return strconv.Itoa(r.Intensity)
	case FieldSector:
		return r.Sector
	case FieldTopic:
		return r.Topic
	case FieldInsight:
		return r.Insight
	case FieldURL:
		return r.URL
	case FieldRegion:
		return r.Region
	case FieldStartYear:
		return r.StartYear
	case FieldImpact:
		return r.Impact
	case FieldAdded:
		return r.Added
	case FieldPublished:
		return r.Published
	case FieldCountry:
		return r.Country
	case FieldRelevance:
		return strconv.Itoa(r.Relevance)
	case FieldPestle:
		return r.Pestle
	case FieldSource:
		return r.Source
	case FieldTitle:
		return r.Title
	case FieldLikelihood:
		return strconv.Itoa(r.Likelihood)
	default:
		return ""
	}
}

// UnmarshalJSON accepts the loose numbers found in the source dataset,
// where missing integers are stored as "" and end_year may be a string.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	var aux struct {
		plain
		EndYear    looseInt `json:"end_year"`
		Intensity  looseInt `json:"intensity"`
		Relevance  looseInt `json:"relevance"`
		Likelihood looseInt `json:"likelihood"`
		StartYear  looseInt `json:"start_year"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*r = Record(aux.plain)
	r.EndYear = aux.EndYear.ptr()
	r.Intensity = aux.Intensity.value()
	r.Relevance = aux.Relevance.value()
	r.Likelihood = aux.Likelihood.value()
	if aux.StartYear.set {
		r.StartYear = strconv.Itoa(aux.StartYear.n)
	}
	return nil
}

type looseInt struct {
	n   int
	set bool
}

func (l *looseInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil
		}
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("not a number: %q", raw)
	}
	l.n = int(f)
	l.set = true
	return nil
}

func (l looseInt) value() int {
	return l.n
}

func (l looseInt) ptr() *int {
	if !l.set {
		return nil
	}
	v := l.n
	return &v
}
