package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"fintrack/internal/core"
)

// Backup is the combined JSON document holding every record list of a user.
type Backup struct {
	Goals        []core.Goal        `json:"goals"`
	Transactions []core.Transaction `json:"transactions"`
	Bills        []core.Bill        `json:"bills"`
	Investments  []core.Investment  `json:"investments"`
	ExportedAt   time.Time          `json:"exportedAt"`
}

// NewBackup wraps a snapshot. Nil lists become empty arrays in the output.
func NewBackup(s core.Snapshot, exportedAt time.Time) Backup {
	b := Backup{
		Goals:        s.Goals,
		Transactions: s.Transactions,
		Bills:        s.Bills,
		Investments:  s.Investments,
		ExportedAt:   exportedAt.UTC(),
	}
	if b.Goals == nil {
		b.Goals = []core.Goal{}
	}
	if b.Transactions == nil {
		b.Transactions = []core.Transaction{}
	}
	if b.Bills == nil {
		b.Bills = []core.Bill{}
	}
	if b.Investments == nil {
		b.Investments = []core.Investment{}
	}
	return b
}

// Snapshot returns the record lists held by the backup.
func (b Backup) Snapshot() core.Snapshot {
	return core.Snapshot{
		Transactions: b.Transactions,
		Bills:        b.Bills,
		Goals:        b.Goals,
		Investments:  b.Investments,
	}
}

// WriteBackup writes b as indented JSON.
func WriteBackup(w io.Writer, b Backup) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal backup: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	return nil
}

// ReadBackup parses a document produced by WriteBackup.
func ReadBackup(r io.Reader) (Backup, error) {
	var b Backup
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&b); err != nil {
		return Backup{}, fmt.Errorf("decode backup: %w", err)
	}
	return b, nil
}
