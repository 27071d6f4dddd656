package dataset

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// writeIDXImages serializes images in IDX format for tests.
func writeIDXImages(t *testing.T, dir string, magic uint32, images [][]byte, rows, cols int) string {
	t.Helper()
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, magic)
	binary.Write(&buf, binary.BigEndian, uint32(len(images)))
	binary.Write(&buf, binary.BigEndian, uint32(rows))
	binary.Write(&buf, binary.BigEndian, uint32(cols))
	for _, img := range images {
		buf.Write(img)
	}
	path := filepath.Join(dir, "images.idx")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeIDXLabels(t *testing.T, dir string, magic uint32, labels []byte) string {
	t.Helper()
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, magic)
	binary.Write(&buf, binary.BigEndian, uint32(len(labels)))
	buf.Write(labels)
	path := filepath.Join(dir, "labels.idx")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadIDXImages(t *testing.T) {
	dir := t.TempDir()
	path := writeIDXImages(t, dir, idxImagesMagic, [][]byte{
		{0, 128, 255, 64},
		{255, 255, 0, 0},
	}, 2, 2)

	images, err := ReadIDXImages(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := images.Shape(); !got.Equal([]int{2, 1, 2, 2}) {
		t.Fatalf("shape = %v, want [2, 1, 2, 2]", got)
	}
	if images.Data()[1] != 128.0/255 {
		t.Errorf("pixel not normalized: got %f", images.Data()[1])
	}
	if images.Data()[2] != 1.0 {
		t.Errorf("255 should normalize to 1, got %f", images.Data()[2])
	}
}

func TestReadIDXImages_BadMagic(t *testing.T) {
	dir := t.TempDir()
	path := writeIDXImages(t, dir, 9999, [][]byte{{0}}, 1, 1)
	if _, err := ReadIDXImages(path); err == nil {
		t.Error("bad magic should fail")
	}
}

func TestLoadImageSet(t *testing.T) {
	dir := t.TempDir()
	images := writeIDXImages(t, dir, idxImagesMagic, [][]byte{
		{10, 20, 30, 40}, {50, 60, 70, 80}, {90, 100, 110, 120},
	}, 2, 2)
	labels := writeIDXLabels(t, dir, idxLabelsMagic, []byte{3, 1, 4})

	set, err := LoadImageSet(images, labels)
	if err != nil {
		t.Fatal(err)
	}
	if set.Len() != 3 {
		t.Fatalf("len = %d, want 3", set.Len())
	}
	if set.Labels[2] != 4 {
		t.Errorf("labels = %v, want [3 1 4]", set.Labels)
	}
}

func TestLoadImageSet_CountMismatch(t *testing.T) {
	dir := t.TempDir()
	images := writeIDXImages(t, dir, idxImagesMagic, [][]byte{{1, 2, 3, 4}}, 2, 2)
	labels := writeIDXLabels(t, dir, idxLabelsMagic, []byte{0, 1})

	if _, err := LoadImageSet(images, labels); err == nil {
		t.Error("mismatched counts should fail")
	}
}

func TestImageSet_Split(t *testing.T) {
	dir := t.TempDir()
	images := writeIDXImages(t, dir, idxImagesMagic, [][]byte{
		{1, 2, 3, 4}, {5, 6, 7, 8}, {9, 10, 11, 12},
	}, 2, 2)
	labels := writeIDXLabels(t, dir, idxLabelsMagic, []byte{0, 1, 2})
	set, err := LoadImageSet(images, labels)
	if err != nil {
		t.Fatal(err)
	}

	train, val, err := set.Split(2)
	if err != nil {
		t.Fatal(err)
	}
	if train.Len() != 2 || val.Len() != 1 {
		t.Fatalf("split sizes = %d/%d, want 2/1", train.Len(), val.Len())
	}
	if val.Images.Data()[0] != 9.0/255 {
		t.Errorf("validation images misaligned: got %f", val.Images.Data()[0])
	}
	if val.Labels[0] != 2 {
		t.Errorf("validation labels misaligned: got %d", val.Labels[0])
	}

	if _, _, err := set.Split(5); err == nil {
		t.Error("out-of-range split should fail")
	}
}
