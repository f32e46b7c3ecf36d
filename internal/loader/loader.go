package loader

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/PASTER-G/CI-guard/internal/ir"
)

// Diagnostics collects non-fatal per-record problems (validation errors).
type Diagnostics struct {
	Warnings []string
}

func (d *Diagnostics) warnf(format string, args ...any) {
	d.Warnings = append(d.Warnings, fmt.Sprintf(format, args...))
}

// ErrNoRecords is returned when the source yields no resource records at
// all; callers treat it as a fatal load error.
var ErrNoRecords = errors.New("no resource records found")

// Load reads normalized resource records from path (a file, or a directory
// walked recursively). *.ndjson / *.jsonl files carry one flat record per
// line; *.json files carry Terraform plan output. Per-record problems are
// reported as warnings and the record is skipped; only an unreadable source
// or an empty batch is an error.
func Load(path string) (ir.Scan, Diagnostics, error) {
	var scan ir.Scan
	var diags Diagnostics
	scan.IRVersion = ir.Version
	scan.Source = filepath.Clean(path)

	info, err := os.Stat(path)
	if err != nil {
		return scan, diags, fmt.Errorf("read source: %w", err)
	}

	var files []string
	if info.IsDir() {
		_ = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				// keep walking; an unreadable corner of the source must
				// still be visible in the diagnostics
				diags.warnf("%s: %v", p, err)
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if isRecordFile(p) || isPlanFile(p) {
				files = append(files, p)
			}
			return nil
		})
	} else {
		files = []string{path}
	}
	if len(files) == 0 {
		return scan, diags, ErrNoRecords
	}

	seen := map[string]bool{}
	for _, p := range files {
		var rs []ir.Resource
		var perr error
		if isPlanFile(p) {
			rs, perr = parsePlanFile(p, &diags)
		} else {
			rs, perr = parseRecordFile(p, &diags)
		}
		if perr != nil {
			diags.warnf("%s: %v", p, perr)
			continue
		}
		for _, r := range rs {
			// IDs are unique across the whole batch
			if seen[r.ID] {
				diags.warnf("%s: duplicate resource id %q skipped", p, r.ID)
				continue
			}
			seen[r.ID] = true
			scan.Resources = append(scan.Resources, r)
		}
	}
	if len(scan.Resources) == 0 {
		return scan, diags, ErrNoRecords
	}
	return scan, diags, nil
}

func isRecordFile(p string) bool {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".ndjson", ".jsonl":
		return true
	}
	return false
}

func isPlanFile(p string) bool {
	return strings.ToLower(filepath.Ext(p)) == ".json"
}

func parseRecordFile(path string, diags *Diagnostics) ([]ir.Resource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseRecords(f, path, diags), nil
}

// ParseRecords decodes flat records, one JSON object per line, the format
// external loaders and the scan API hand over. Bad lines become warnings.
func ParseRecords(r io.Reader, source string, diags *Diagnostics) []ir.Resource {
	var out []ir.Resource
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		res, err := NormalizeRecord([]byte(line))
		if err != nil {
			diags.warnf("%s:%d: %v", source, ln, err)
			continue
		}
		out = append(out, res)
	}
	if err := sc.Err(); err != nil {
		diags.warnf("%s: %v", source, err)
	}
	return out
}

type flatRecord struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Port      int    `json:"port"`
	CIDR      string `json:"cidr"`
	Protocol  string `json:"protocol"`
	Encrypted *bool  `json:"encrypted"`
}

// NormalizeRecord resolves one flat JSON record into the discriminated
// union. Unknown kinds and empty IDs are validation errors; callers skip
// the record and keep scanning.
func NormalizeRecord(b []byte) (ir.Resource, error) {
	var fr flatRecord
	if err := json.Unmarshal(b, &fr); err != nil {
		return ir.Resource{}, fmt.Errorf("malformed record: %w", err)
	}
	if strings.TrimSpace(fr.ID) == "" {
		return ir.Resource{}, errors.New("record has empty id")
	}
	switch ir.Kind(fr.Type) {
	case ir.KindNetworkRule:
		return ir.Resource{
			ID:      fr.ID,
			Kind:    ir.KindNetworkRule,
			Network: &ir.NetworkRule{Port: fr.Port, CIDR: fr.CIDR, Protocol: fr.Protocol},
		}, nil
	case ir.KindStorage:
		enc := true // absent field leans toward "no violation"
		if fr.Encrypted != nil {
			enc = *fr.Encrypted
		}
		return ir.Resource{
			ID:      fr.ID,
			Kind:    ir.KindStorage,
			Storage: &ir.Storage{Encrypted: enc},
		}, nil
	default:
		return ir.Resource{}, fmt.Errorf("unknown record type %q", fr.Type)
	}
}
