// Package runlog reads and writes per-run archives: one zstd-compressed
// file holding a JSON header line followed by one JSON line per history
// event. Archives are the portable record of a run; render and inspect
// work from them without re-simulating.
package runlog

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/dasje/cookie-clicker-simulator/internal/report"
	"github.com/dasje/cookie-clicker-simulator/internal/sim/engine"
)

const (
	Version = 1

	// Ext is the archive filename suffix.
	Ext = ".run.zst"
)

type Final struct {
	Elapsed float64 `json:"elapsed"`
	Balance float64 `json:"balance"`
	Total   float64 `json:"total"`
	Rate    float64 `json:"rate"`
}

type Header struct {
	Version       int                `json:"version"`
	RunID         string             `json:"run_id"`
	CreatedAt     time.Time          `json:"created_at"`
	Strategy      string             `json:"strategy"`
	Horizon       float64            `json:"horizon"`
	BaseRate      float64            `json:"base_rate"`
	CatalogDigest string             `json:"catalog_digest"`
	HistoryDigest string             `json:"history_digest"`
	Final         Final              `json:"final"`
	Purchases     []report.ItemCount `json:"purchases,omitempty"`
	Events        int                `json:"events"`
}

type Record struct {
	Header Header
	Events []engine.Event
}

// NewRecord assembles an archive record from a finished run.
func NewRecord(runID, strategy string, horizon, baseRate float64, catalogDigest string, st *engine.State) Record {
	events := st.History()
	return Record{
		Header: Header{
			Version:       Version,
			RunID:         runID,
			CreatedAt:     time.Now().UTC(),
			Strategy:      strategy,
			Horizon:       horizon,
			BaseRate:      baseRate,
			CatalogDigest: catalogDigest,
			HistoryDigest: HistoryDigest(events),
			Final: Final{
				Elapsed: st.ElapsedTime(),
				Balance: st.Balance(),
				Total:   st.LifetimeTotal(),
				Rate:    st.Rate(),
			},
			Purchases: report.PurchaseCounts(events),
			Events:    len(events),
		},
		Events: events,
	}
}

// HistoryDigest hashes the canonical JSON of the event log, one event per
// line. Inspect recomputes it to catch corrupted or edited archives.
func HistoryDigest(events []engine.Event) string {
	var concat bytes.Buffer
	for _, ev := range events {
		b, _ := json.Marshal(ev)
		concat.Write(b)
		concat.WriteByte('\n')
	}
	sum := sha256.Sum256(concat.Bytes())
	return hex.EncodeToString(sum[:])
}

func Write(path string, rec Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 128*1024)
	defer bw.Flush()

	hb, err := json.Marshal(rec.Header)
	if err != nil {
		return fmt.Errorf("marshal header: %w", err)
	}
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	for _, ev := range rec.Events {
		b, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}
		if _, err := bw.Write(b); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return nil
}

func Read(path string) (Record, error) {
	var rec Record
	f, err := os.Open(path)
	if err != nil {
		return rec, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return rec, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 128*1024)
	headerLine, err := br.ReadBytes('\n')
	if err != nil && err != io.EOF {
		return rec, err
	}
	if err := json.Unmarshal(headerLine, &rec.Header); err != nil {
		return rec, fmt.Errorf("%s: header: %w", filepath.Base(path), err)
	}

	for {
		line, err := br.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			var ev engine.Event
			if uerr := json.Unmarshal(line, &ev); uerr != nil {
				return rec, fmt.Errorf("%s: event %d: %w", filepath.Base(path), len(rec.Events), uerr)
			}
			rec.Events = append(rec.Events, ev)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return rec, err
		}
	}
	return rec, nil
}

// Verify checks the archive's internal consistency: event count and
// history digest must match the header.
func Verify(rec Record) error {
	if rec.Header.Events != len(rec.Events) {
		return fmt.Errorf("run %s: header says %d events, file has %d",
			rec.Header.RunID, rec.Header.Events, len(rec.Events))
	}
	if got := HistoryDigest(rec.Events); got != rec.Header.HistoryDigest {
		return fmt.Errorf("run %s: history digest mismatch", rec.Header.RunID)
	}
	return nil
}

// List returns all archive paths under dir, sorted by name.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Ext) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
