package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// TitleStatus is the terminal outcome of a verification.
type TitleStatus string

const (
	// StatusApproved marks a title accepted for registration.
	StatusApproved TitleStatus = "Approved"
	// StatusRejected marks a title refused registration.
	StatusRejected TitleStatus = "Rejected"
)

// Title represents a registered publication title.
// The verification engine only ever appends approved titles; correction and
// removal are administrative concerns outside this module.
type Title struct {
	Id        ID
	Text      string
	Status    TitleStatus
	CreatedAt time.Time
}

// Key returns the title's normalized key used for exact matching.
func (t *Title) Key() string {
	return NormalizeKey(t.Text)
}

// CheckType identifies which verification check produced a Detail.
type CheckType string

const (
	CheckDisallowedWord   CheckType = "disallowed_word"
	CheckDisallowedPrefix CheckType = "disallowed_prefix"
	CheckDisallowedSuffix CheckType = "disallowed_suffix"
	CheckPeriodicity      CheckType = "periodicity"
	CheckCombination      CheckType = "combination"
	CheckSemantic         CheckType = "semantic"
	CheckPhonetic         CheckType = "phonetic"
)

// Detail is a single structured explanation record attached to a Decision.
// Score is 0 when the check carries no numeric evidence.
type Detail struct {
	Check        CheckType `json:"check_type"`
	Description  string    `json:"description"`
	MatchedTitle string    `json:"matched_title,omitempty"`
	MatchedWord  string    `json:"matched_word,omitempty"`
	Score        float64   `json:"score,omitempty"`
}

// Decision is the outcome of verifying a candidate title.
// SimilarityScore and VerificationProbability are percentages in [0,100]
// and always satisfy probability = 100 - score.
type Decision struct {
	Title                   string      `json:"title"`
	Status                  TitleStatus `json:"status"`
	Reason                  string      `json:"reason"`
	SimilarityScore         float64     `json:"similarity_score"`
	VerificationProbability float64     `json:"verification_probability"`
	Details                 []Detail    `json:"details"`
}

// Approved reports whether the decision accepted the title.
func (d *Decision) Approved() bool {
	return d.Status == StatusApproved
}
