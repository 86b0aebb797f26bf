package automatic

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"lukechampine.com/frand"
)

// GenerateSeeds creates n random 32-byte deal seeds.
func GenerateSeeds(n int) [][32]byte {
	seeds := make([][32]byte, n)
	for i := range seeds {
		frand.Read(seeds[i][:])
	}
	return seeds
}

// EncodeSeed is the text form of a seed, as written to seed files and
// the CSV log.
func EncodeSeed(seed [32]byte) string {
	return base64.RawURLEncoding.EncodeToString(seed[:])
}

// DecodeSeed reads a seed written by EncodeSeed. Standard base64 is also
// accepted.
func DecodeSeed(s string) ([32]byte, error) {
	var seed [32]byte
	decoded, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		decoded, err = base64.RawStdEncoding.DecodeString(s)
		if err != nil {
			return seed, err
		}
	}
	if len(decoded) != len(seed) {
		return seed, fmt.Errorf("invalid seed length: got %d bytes, expected %d", len(decoded), len(seed))
	}
	copy(seed[:], decoded)
	return seed, nil
}

// SaveSeeds writes seeds to a file, one per line.
func SaveSeeds(seeds [][32]byte, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create seed file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if _, err := writer.WriteString("# Deal seeds (base64 URL-safe encoded, 32 bytes each)\n"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, seed := range seeds {
		if _, err := writer.WriteString(EncodeSeed(seed) + "\n"); err != nil {
			return fmt.Errorf("failed to write seed %d: %w", i, err)
		}
	}
	return writer.Flush()
}

// LoadSeeds reads a file written by SaveSeeds. Blank lines and lines
// starting with # are skipped.
func LoadSeeds(path string) ([][32]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer file.Close()

	var seeds [][32]byte
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		seed, err := DecodeSeed(line)
		if err != nil {
			return nil, fmt.Errorf("bad seed at line %d: %w", lineNum, err)
		}
		seeds = append(seeds, seed)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading seed file: %w", err)
	}
	return seeds, nil
}
