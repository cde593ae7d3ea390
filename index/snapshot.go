package index

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const (
	manifestFile       = "index_manifest.json"
	defaultVectorFile  = "vectors.f32"
	defaultTitlesFile  = "titles.jsonl"
	snapshotVersion    = 1
)

// Manifest describes a title index snapshot and how to interpret it.
type Manifest struct {
	IndexVersion int    `json:"index_version"`
	CreatedAt    string `json:"created_at"`
	ModelID      string `json:"model_id"`
	Dim          int    `json:"dim"`
	Normalize    bool   `json:"normalize"`
	VectorFile   string `json:"vector_file"`
	TitlesFile   string `json:"titles_file"`
}

// titleEntry is one row of titles.jsonl. The ordinal position of the line
// must agree exactly with the row position in the vector file.
type titleEntry struct {
	Title string `json:"title"`
}

// Snapshot is a loaded title index snapshot.
type Snapshot struct {
	Manifest Manifest
	Titles   []string
	Vectors  []float32
}

// LoadSnapshot reads a snapshot from dir containing manifest + titles + vectors.
// Returns ErrSnapshotMissing if no manifest exists at dir.
func LoadSnapshot(dir string) (*Snapshot, error) {
	manifestPath := filepath.Join(dir, manifestFile)
	b, err := os.ReadFile(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotMissing, manifestPath)
		}
		return nil, fmt.Errorf("cannot read manifest %s: %w", manifestPath, err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("%w: invalid manifest JSON %s: %w", ErrSnapshotCorrupt, manifestPath, err)
	}
	if m.Dim <= 0 {
		return nil, fmt.Errorf("%w: invalid dim in manifest: %d", ErrSnapshotCorrupt, m.Dim)
	}
	if m.VectorFile == "" {
		m.VectorFile = defaultVectorFile
	}
	if m.TitlesFile == "" {
		m.TitlesFile = defaultTitlesFile
	}

	titles, err := loadTitles(filepath.Join(dir, m.TitlesFile))
	if err != nil {
		return nil, err
	}
	vectors, err := loadVectors(filepath.Join(dir, m.VectorFile), len(titles), m.Dim)
	if err != nil {
		return nil, err
	}

	return &Snapshot{Manifest: m, Titles: titles, Vectors: vectors}, nil
}

func loadTitles(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open titles file %s: %w", path, err)
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e titleEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("%w: invalid titles JSONL %s: %w", ErrSnapshotCorrupt, path, err)
		}
		out = append(out, e.Title)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read titles file %s: %w", path, err)
	}
	return out, nil
}

func loadVectors(path string, nTitles, dim int) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open vector file %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("cannot stat vector file %s: %w", path, err)
	}

	expected := int64(nTitles * dim * 4)
	if expected != st.Size() {
		return nil, fmt.Errorf("%w: vector file size mismatch: got %d want %d (titles=%d dim=%d)",
			ErrSnapshotCorrupt, st.Size(), expected, nTitles, dim)
	}

	out := make([]float32, nTitles*dim)
	if err := binary.Read(io.LimitReader(f, expected), binary.LittleEndian, out); err != nil {
		return nil, fmt.Errorf("cannot read vectors from %s: %w", path, err)
	}
	return out, nil
}

// WriteSnapshot writes the current index contents to dir as snapshot
// artifacts, suitable for a later Hydrate.
func (idx *Index) WriteSnapshot(dir, modelID string) error {
	idx.mu.RLock()
	titles := make([]string, len(idx.texts))
	copy(titles, idx.texts)
	vectors := make([]float32, len(idx.vectors))
	copy(vectors, idx.vectors)
	idx.mu.RUnlock()

	return writeSnapshot(dir, Manifest{
		IndexVersion: snapshotVersion,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
		ModelID:      modelID,
		Dim:          idx.dim,
		Normalize:    true,
		VectorFile:   defaultVectorFile,
		TitlesFile:   defaultTitlesFile,
	}, titles, vectors)
}

func writeSnapshot(dir string, m Manifest, titles []string, vectors []float32) error {
	if len(vectors) != len(titles)*m.Dim {
		return fmt.Errorf("vector length mismatch: got %d want %d", len(vectors), len(titles)*m.Dim)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create snapshot dir %s: %w", dir, err)
	}

	mb, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, manifestFile), mb, 0o644); err != nil {
		return fmt.Errorf("cannot write manifest: %w", err)
	}

	tf, err := os.Create(filepath.Join(dir, m.TitlesFile))
	if err != nil {
		return fmt.Errorf("cannot create titles file: %w", err)
	}
	bw := bufio.NewWriter(tf)
	for _, title := range titles {
		line, err := json.Marshal(titleEntry{Title: title})
		if err != nil {
			tf.Close()
			return err
		}
		bw.Write(line)
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		tf.Close()
		return fmt.Errorf("cannot write titles file: %w", err)
	}
	if err := tf.Close(); err != nil {
		return err
	}

	vf, err := os.Create(filepath.Join(dir, m.VectorFile))
	if err != nil {
		return fmt.Errorf("cannot create vector file: %w", err)
	}
	if err := binary.Write(vf, binary.LittleEndian, vectors); err != nil {
		vf.Close()
		return fmt.Errorf("cannot write vectors: %w", err)
	}
	return vf.Close()
}
