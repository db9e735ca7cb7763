package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ChunkID is a unique identifier for an indexed document chunk.
// It is generated from the chunk's content using content-based hashing,
// so re-ingesting identical text is idempotent.
type ChunkID uint64

// ChunkIDFromContent generates a deterministic ChunkID from text using BLAKE2b hashing.
func ChunkIDFromContent(text string) ChunkID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ChunkID(binary.LittleEndian.Uint64(sum))
}

// GrantID is a composite grant identifier of the form "source:number",
// e.g. "nihr:1023" or "innovate_uk:77". The source prefix names the funding
// body feed the grant came from; the numeric suffix is the feed's own
// identifier for the opportunity.
type GrantID string

// Source returns the source prefix of the grant id, or "" if the id is malformed.
func (id GrantID) Source() string {
	source, _, ok := strings.Cut(string(id), ":")
	if !ok {
		return ""
	}
	return source
}

// Number returns the numeric suffix of the grant id, or "" if the id is malformed.
func (id GrantID) Number() string {
	_, number, ok := strings.Cut(string(id), ":")
	if !ok {
		return ""
	}
	return number
}

// Valid reports whether the id has a non-empty lowercase source prefix and an
// all-digit numeric suffix.
func (id GrantID) Valid() bool {
	source, number, ok := strings.Cut(string(id), ":")
	if !ok || source == "" || number == "" {
		return false
	}
	for _, r := range source {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return false
		}
	}
	for _, r := range number {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// GrantStatus identifies whether a grant is accepting applications.
type GrantStatus int

const (
	// StatusOpen means the grant is accepting applications.
	StatusOpen GrantStatus = iota + 1
	// StatusClosed means the application window has passed.
	StatusClosed
)

func (s GrantStatus) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Grant is the structured metadata record for a single funding opportunity.
type Grant struct {
	Id          GrantID
	Title       string
	Source      string
	Description string
	URL         string
	Status      GrantStatus
	// TotalFundGBP is the total competition fund in pounds. Zero means unknown.
	TotalFundGBP int64
	OpensAt      time.Time
	ClosesAt     time.Time
	// EligibilitySignal is a precomputed 0-1 fit signal derived from the
	// grant's structured eligibility data. Valid only when
	// HasEligibilitySignal is true; an absent signal is not the same as zero.
	EligibilitySignal    float64
	HasEligibilitySignal bool
	InsertedAt           time.Time
	UpdatedAt            time.Time
}

// Open reports whether the grant is accepting applications at the given time.
// A stored open status is overridden when the deadline has already passed.
func (g *Grant) Open(now time.Time) bool {
	if g.Status != StatusOpen {
		return false
	}
	if !g.ClosesAt.IsZero() && !g.ClosesAt.After(now) {
		return false
	}
	return true
}

// Chunk is an embedded fragment of a grant document, the unit stored in the
// vector index. Several chunks usually belong to one grant.
type Chunk struct {
	Id         ChunkID
	GrantId    GrantID
	DocType    string // e.g. "overview", "eligibility", "scope"
	Text       string
	Vector     []float32
	InsertedAt time.Time
}

// Role identifies the author of a conversation turn.
type Role int

const (
	// RoleUser represents the person asking questions.
	RoleUser Role = iota + 1
	// RoleAssistant represents the answer generator.
	RoleAssistant
)

// Turn is a single conversation turn supplied by the caller. Assistant turns
// carry the ids of the grants surfaced alongside the generated answer.
type Turn struct {
	Role     Role
	Content  string
	GrantIds []GrantID
}

// ChunkMatch is a chunk-level hit from vector similarity search.
type ChunkMatch struct {
	ChunkId ChunkID
	GrantId GrantID
	Score   float32
}

// Candidate is a grant under consideration for one response, after chunk-level
// hits have been grouped per grant. Grant ids are unique within a batch.
type Candidate struct {
	GrantId      GrantID
	Title        string
	Source       string
	Status       GrantStatus
	TotalFundGBP int64
	ClosesAt     time.Time
	// Semantic is the best chunk similarity observed for this grant, in [0,1].
	Semantic float64
	// SemanticRank is the candidate's position in the original similarity
	// ordering (0-based). Preserved as the final tie-break.
	SemanticRank int
	// Eligibility is the structured fit signal in [0,1]. Valid only when
	// EligibilityKnown is true; a failed metadata fetch leaves it unknown.
	Eligibility      float64
	EligibilityKnown bool
	// DirectlyFetched marks candidates obtained by id lookup (follow-up and
	// comparative paths) rather than similarity ranking. They are exempt from
	// diversity penalties.
	DirectlyFetched bool
}

// RankedResult is a candidate with its final scores attached.
type RankedResult struct {
	Candidate
	// Fused is the combined semantic/eligibility score, in [0,1].
	Fused float64
	// Adjusted is the fused score minus any diversity penalty applied during
	// selection. Equals Fused for the first pick and for directly fetched
	// candidates.
	Adjusted float64
}
