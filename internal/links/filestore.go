package links

import (
	"bufio"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
)

// FileStore keeps each property index as <dir>/<property>_index.json plus
// <dir>/<property>_vectors.bin. The vector file is little-endian: a uint32
// row count, a uint32 dimension, then row-major float32 values.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) indexPath(property string) string {
	return filepath.Join(s.dir, property+"_index.json")
}

func (s *FileStore) vectorPath(property string) string {
	return filepath.Join(s.dir, property+"_vectors.bin")
}

// Load reads both files. A missing file yields ErrIndexNotFound.
func (s *FileStore) Load(ctx context.Context, property string) (*Index, error) {
	meta, err := os.ReadFile(s.indexPath(property))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrIndexNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read link index: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(meta, &records); err != nil {
		return nil, fmt.Errorf("failed to decode link index: %w", err)
	}

	f, err := os.Open(s.vectorPath(property))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrIndexNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open link vectors: %w", err)
	}
	defer f.Close()

	vectors, err := readVectors(bufio.NewReader(f))
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(records) {
		return nil, fmt.Errorf("link index for %s has %d records but %d vectors", property, len(records), len(vectors))
	}
	return NewIndex(records, vectors), nil
}

// Save writes both files, each through a temp file and rename.
func (s *FileStore) Save(ctx context.Context, property string, index *Index) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create storage dir: %w", err)
	}

	meta, err := json.MarshalIndent(index.Records(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode link index: %w", err)
	}
	if err := writeFile(s.indexPath(property), func(w io.Writer) error {
		_, err := w.Write(meta)
		return err
	}); err != nil {
		return fmt.Errorf("failed to write link index: %w", err)
	}

	if err := writeFile(s.vectorPath(property), func(w io.Writer) error {
		return writeVectors(w, index.Vectors())
	}); err != nil {
		return fmt.Errorf("failed to write link vectors: %w", err)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	bw := bufio.NewWriter(tmp)
	if err := write(bw); err != nil {
		tmp.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func writeVectors(w io.Writer, vectors [][]float64) error {
	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}
	header := [2]uint32{uint32(len(vectors)), uint32(dim)}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return err
	}

	buf := make([]byte, 4*dim)
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("vector %d has dimension %d, expected %d", i, len(v), dim)
		}
		for j, x := range v {
			binary.LittleEndian.PutUint32(buf[4*j:], math.Float32bits(float32(x)))
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

func readVectors(r io.Reader) ([][]float64, error) {
	var header [2]uint32
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read vector header: %w", err)
	}
	rows, dim := int(header[0]), int(header[1])

	vectors := make([][]float64, rows)
	buf := make([]byte, 4*dim)
	for i := range vectors {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("failed to read vector %d: %w", i, err)
		}
		v := make([]float64, dim)
		for j := range v {
			v[j] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[4*j:])))
		}
		vectors[i] = v
	}
	return vectors, nil
}
