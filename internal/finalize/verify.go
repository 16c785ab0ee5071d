package finalize

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"trajan/internal/model"
)

// VerifyReport lists the artifacts checked by Verify.
type VerifyReport struct {
	RunID    string   `json:"run_id"`
	Verified []string `json:"verified"`
}

// Verify recomputes the SHA-256 digest of every artifact named in the run's
// checksum manifest and compares it against the recorded value. The first
// divergence fails with ChecksumMismatchError naming the artifact. Missing
// artifacts are reported as plain file errors.
func Verify(dir, runID string) (VerifyReport, error) {
	manifestPath := filepath.Join(dir, runID+"-checksums.txt")
	manifest, err := readManifest(manifestPath)
	if err != nil {
		return VerifyReport{}, err
	}
	if len(manifest) == 0 {
		return VerifyReport{}, fmt.Errorf("manifest %s names no artifacts", manifestPath)
	}

	report := VerifyReport{RunID: runID, Verified: make([]string, 0, len(manifest))}
	for _, entry := range manifest {
		data, err := os.ReadFile(filepath.Join(dir, entry.name))
		if err != nil {
			return VerifyReport{}, err
		}
		sum := sha256.Sum256(data)
		got := hex.EncodeToString(sum[:])
		if got != entry.digest {
			return VerifyReport{}, &model.ChecksumMismatchError{Name: entry.name, Want: entry.digest, Got: got}
		}
		report.Verified = append(report.Verified, entry.name)
	}
	return report, nil
}

type manifestEntry struct {
	name   string
	digest string
}

func readManifest(path string) ([]manifestEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	entries := make([]manifestEntry, 0, 4)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		digest, name, ok := strings.Cut(line, "  ")
		if !ok {
			return nil, fmt.Errorf("malformed manifest line in %s: %q", path, line)
		}
		entries = append(entries, manifestEntry{name: strings.TrimSpace(name), digest: digest})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
