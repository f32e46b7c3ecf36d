package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/PASTER-G/CI-guard/internal/ir"
)

func WriteJSON(scanID, outDir string, scan *ir.Scan) (string, error) {
	path := filepath.Join(outDir, scanID+".json")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(scan); err != nil {
		return "", err
	}
	return path, nil
}

// LoadScan reads a scan artifact previously written by WriteJSON. Used by
// the report and diff commands, which work from files rather than a run
// history store.
func LoadScan(path string) (ir.Scan, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ir.Scan{}, err
	}
	var scan ir.Scan
	if err := json.Unmarshal(b, &scan); err != nil {
		return ir.Scan{}, err
	}
	return scan, nil
}
