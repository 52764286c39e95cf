// Package domain defines the entity types, enums, and shared invariants of
// the compliance case workflow: submissions, cases, evidence, timeline
// events, attachments, and the intelligence history chain.
package domain

import "time"

// SubmissionStatus is the lifecycle state of a Submission.
type SubmissionStatus string

const (
	SubmissionSubmitted SubmissionStatus = "submitted"
	SubmissionUpdated   SubmissionStatus = "updated"
	SubmissionCancelled SubmissionStatus = "cancelled"
)

// Submission is the inbound payload that opens a Case. Once Status is
// SubmissionCancelled the row is immutable.
type Submission struct {
	ID              string           `json:"id"`
	DecisionType    string           `json:"decision_type"` // rule-pack selector, e.g. "csf", "csa"
	SubmittedBy     string           `json:"submitted_by,omitempty"`
	AccountID       string           `json:"account_id,omitempty"`
	LocationID      string           `json:"location_id,omitempty"`
	FormData        map[string]any   `json:"form_data"`
	RawPayload      map[string]any   `json:"raw_payload,omitempty"`
	EvaluatorOutput map[string]any   `json:"evaluator_output,omitempty"`
	Status          SubmissionStatus `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
}

// CaseStatus is a Case's position in the status machine (see
// pkg/workflow for the transition table).
type CaseStatus string

const (
	CaseNew        CaseStatus = "new"
	CaseInReview   CaseStatus = "in_review"
	CaseNeedsInfo  CaseStatus = "needs_info"
	CaseApproved   CaseStatus = "approved"
	CaseRejected   CaseStatus = "rejected"
	CaseBlocked    CaseStatus = "blocked"
	CaseClosed     CaseStatus = "closed"
)

// Terminal reports whether s is a terminal status: no further transitions
// are allowed out of it except (for admin) to CaseClosed, and overdue
// computation excludes terminal cases.
func (s CaseStatus) Terminal() bool {
	switch s {
	case CaseApproved, CaseRejected, CaseBlocked, CaseClosed:
		return true
	default:
		return false
	}
}

// Case is a reviewable unit derived from a Submission (or, for synthetic
// cases, standing alone).
type Case struct {
	ID                string     `json:"id"`
	SubmissionID      string     `json:"submission_id,omitempty"` // empty for synthetic cases
	DecisionType      string     `json:"decision_type"`
	Title             string     `json:"title"`
	Summary           string     `json:"summary"`
	Status            CaseStatus `json:"status"`
	AssignedTo        string     `json:"assigned_to,omitempty"`
	AssignedAt        *time.Time `json:"assigned_at,omitempty"`
	DueAt             time.Time  `json:"due_at"` // immutable after creation
	PacketEvidenceIDs []string   `json:"packet_evidence_ids"`
	SearchableText    string     `json:"-"` // denormalized, rebuilt on mutation
	ReviewerNotes     string     `json:"reviewer_notes,omitempty"`
	AdminNotes        string     `json:"admin_notes,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// SLAHours returns the due-at offset for decisionType: 24h for the CSF
// family, 48h for the license family (spec default).
func SLAHours(decisionType string) time.Duration {
	switch decisionType {
	case "csf", "csf_practitioner":
		return 24 * time.Hour
	case "csa":
		return 24 * time.Hour
	default:
		return 48 * time.Hour
	}
}

// EvidenceItem is owned exclusively by one Case; deleting the case cascades
// to its evidence.
type EvidenceItem struct {
	ID                string         `json:"id"`
	CaseID            string         `json:"case_id"`
	Title             string         `json:"title"`
	Snippet           string         `json:"snippet"`
	Citation          string         `json:"citation,omitempty"`
	SourceID          string         `json:"source_id,omitempty"`
	Tags              []string       `json:"tags,omitempty"`
	Metadata          map[string]any `json:"metadata,omitempty"`
	IncludedInPacket  bool           `json:"included_in_packet"`
	CreatedAt         time.Time      `json:"created_at"`
}

// EventType enumerates Case timeline events.
type EventType string

const (
	EventCaseCreated              EventType = "case_created"
	EventAssigned                 EventType = "assigned"
	EventUnassigned                EventType = "unassigned"
	EventStatusChanged            EventType = "status_changed"
	EventNoteAdded                EventType = "note_added"
	EventEvidenceAttached         EventType = "evidence_attached"
	EventEvidenceRemoved          EventType = "evidence_removed"
	EventEvidenceRedacted         EventType = "evidence_redacted"
	EventPacketUpdated            EventType = "packet_updated"
	EventAttachmentAdded          EventType = "attachment_added"
	EventAttachmentDownloaded     EventType = "attachment_downloaded"
	EventAttachmentDeleted        EventType = "attachment_deleted"
	EventAttachmentRedacted       EventType = "attachment_redacted"
	EventRequestInfo              EventType = "request_info"
	EventSubmissionUpdated        EventType = "submission_updated"
	EventSubmissionCancelled      EventType = "submission_cancelled"
	EventDecisionIntelligenceUpdated EventType = "decision_intelligence_updated"
	EventExported                 EventType = "exported"
)

// ActorRole is who performed an action: a case timeline event's actor, or
// the effective role for a recompute / export request.
type ActorRole string

const (
	RoleSubmitter  ActorRole = "submitter"
	RoleVerifier   ActorRole = "verifier"
	RoleAdmin      ActorRole = "admin"
	RoleDevsupport ActorRole = "devsupport"
	RoleSystem     ActorRole = "system"
)

// CaseEvent is one entry in a case's append-ordered timeline. Events are
// returned newest-first; CreatedAt is the sole ordering key.
type CaseEvent struct {
	ID          string         `json:"id"`
	CaseID      string         `json:"case_id"`
	CreatedAt   time.Time      `json:"created_at"`
	EventType   EventType      `json:"event_type"`
	ActorRole   ActorRole      `json:"actor_role"`
	ActorID     string         `json:"actor_id,omitempty"` // empty for system events
	Message     string         `json:"message"`
	PayloadJSON map[string]any `json:"payload_json,omitempty"`
}

// Attachment metadata. The blob itself lives on a filesystem at
// StoragePath; physical deletion is deferred to the retention sweep.
type Attachment struct {
	ID             string     `json:"id"`
	CaseID         string     `json:"case_id"`
	SubmissionID   string     `json:"submission_id,omitempty"`
	Filename       string     `json:"filename"`
	ContentType    string     `json:"content_type"`
	SizeBytes      int64      `json:"size_bytes"`
	StoragePath    string     `json:"storage_path"`
	UploadedBy     string     `json:"uploaded_by,omitempty"`
	Description    string     `json:"description,omitempty"`
	OriginalSHA256 string     `json:"original_sha256"`
	IsDeleted      bool       `json:"is_deleted"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	DeletedBy      string     `json:"deleted_by,omitempty"`
	DeleteReason   string     `json:"delete_reason,omitempty"`
	IsRedacted     bool       `json:"is_redacted"`
	RedactedAt     *time.Time `json:"redacted_at,omitempty"`
	RedactedBy     string     `json:"redacted_by,omitempty"`
	RedactReason   string     `json:"redact_reason,omitempty"`
	BlobPurgedAt   *time.Time `json:"blob_purged_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// MaxAttachmentSizeBytes is the spec-mandated upload size ceiling (10 MiB).
const MaxAttachmentSizeBytes = 10 * 1024 * 1024

// AcceptedAttachmentContentTypes are the only content types the upload
// endpoint accepts.
var AcceptedAttachmentContentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// ConfidenceBand buckets a confidence score for display.
type ConfidenceBand string

const (
	BandHigh    ConfidenceBand = "high"
	BandMedium  ConfidenceBand = "medium"
	BandLow     ConfidenceBand = "low"
	BandUnknown ConfidenceBand = "unknown"
)

// BandFor maps a confidence score (0-100) to its band: >=80 high, >=50
// medium, else low.
func BandFor(score float64) ConfidenceBand {
	switch {
	case score >= 80:
		return BandHigh
	case score >= 50:
		return BandMedium
	default:
		return BandLow
	}
}

// RecomputeTrigger is the cause of an intelligence recompute.
type RecomputeTrigger string

const (
	TriggerManual      RecomputeTrigger = "manual"
	TriggerSubmission  RecomputeTrigger = "submission"
	TriggerEvidence    RecomputeTrigger = "evidence"
	TriggerRequestInfo RecomputeTrigger = "request_info"
	TriggerDecision    RecomputeTrigger = "decision"
	TriggerUnknown     RecomputeTrigger = "unknown"
)

// IntelligenceHistoryEntry is one immutable record in a case's append-only
// decision intelligence chain. ID also serves as the PreviousRunID linked
// to by the chronologically next entry for the same case.
type IntelligenceHistoryEntry struct {
	ID              string           `json:"id"`
	CaseID          string           `json:"case_id"`
	ComputedAt      time.Time        `json:"computed_at"`
	ConfidenceScore float64          `json:"confidence_score"`
	ConfidenceBand  ConfidenceBand   `json:"confidence_band"`
	RulesPassed     int              `json:"rules_passed"`
	RulesTotal      int              `json:"rules_total"`
	GapCount        int              `json:"gap_count"`
	BiasCount       int              `json:"bias_count"`
	Trigger         RecomputeTrigger `json:"trigger"`
	ActorRole       ActorRole        `json:"actor_role"`
	InputHash       string           `json:"input_hash"`
	PreviousRunID   string           `json:"previous_run_id,omitempty"` // empty for the first entry
	PayloadJSON     map[string]any   `json:"payload_json,omitempty"`
}

// ConfidenceFloor is the minimum confidence_score any history entry may
// carry (spec.md §4.3 step 3; prevents the degenerate "0% everywhere"
// case).
const ConfidenceFloor = 5.0
