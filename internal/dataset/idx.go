// Package dataset loads and batches the training corpora: Fashion-MNIST
// images in IDX format and tab-separated sentiment text.
package dataset

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/chalk-ml/chalk/internal/tensor"
)

// IDX magic numbers, big endian.
const (
	idxImagesMagic = 2051
	idxLabelsMagic = 2049
)

// ImageSet is a loaded image dataset: Images [N, 1, H, W] with pixels
// scaled to [0, 1], Labels as class indices.
type ImageSet struct {
	Images *tensor.Tensor
	Labels []int
}

// Len returns the number of examples.
func (s *ImageSet) Len() int { return len(s.Labels) }

// ReadIDXImages reads an IDX image file:
//
//	magic number: 0x00000803 (2051)
//	number of images, rows, cols: 4 bytes each
//	pixel data: unsigned bytes (0-255)
//
// Pixels are normalized to [0, 1] and returned as [N, 1, rows, cols].
func ReadIDXImages(filename string) (*tensor.Tensor, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return readIDXImages(file)
}

func readIDXImages(r io.Reader) (*tensor.Tensor, error) {
	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", err)
	}
	if magic != idxImagesMagic {
		return nil, fmt.Errorf("invalid magic number: got %d, want %d", magic, idxImagesMagic)
	}

	var numImages, numRows, numCols uint32
	if err := binary.Read(r, binary.BigEndian, &numImages); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &numRows); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &numCols); err != nil {
		return nil, err
	}

	imageSize := int(numRows * numCols)
	out := tensor.New(tensor.Shape{int(numImages), 1, int(numRows), int(numCols)})
	data := out.Data()

	buf := make([]byte, imageSize)
	for i := 0; i < int(numImages); i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("failed to read image %d: %w", i, err)
		}
		base := i * imageSize
		for j, b := range buf {
			data[base+j] = float64(b) / 255.0
		}
	}
	return out, nil
}

// ReadIDXLabels reads an IDX label file:
//
//	magic number: 0x00000801 (2049)
//	number of labels: 4 bytes
//	label data: unsigned bytes
func ReadIDXLabels(filename string) ([]int, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return readIDXLabels(file)
}

func readIDXLabels(r io.Reader) ([]int, error) {
	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", err)
	}
	if magic != idxLabelsMagic {
		return nil, fmt.Errorf("invalid magic number: got %d, want %d", magic, idxLabelsMagic)
	}

	var numLabels uint32
	if err := binary.Read(r, binary.BigEndian, &numLabels); err != nil {
		return nil, err
	}

	raw := make([]byte, numLabels)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}

	labels := make([]int, numLabels)
	for i, b := range raw {
		labels[i] = int(b)
	}
	return labels, nil
}

// LoadImageSet reads matching IDX image and label files into one set.
func LoadImageSet(imagesPath, labelsPath string) (*ImageSet, error) {
	images, err := ReadIDXImages(imagesPath)
	if err != nil {
		return nil, fmt.Errorf("load images %s: %w", imagesPath, err)
	}
	labels, err := ReadIDXLabels(labelsPath)
	if err != nil {
		return nil, fmt.Errorf("load labels %s: %w", labelsPath, err)
	}
	if images.Shape()[0] != len(labels) {
		return nil, fmt.Errorf("image/label count mismatch: %d images, %d labels",
			images.Shape()[0], len(labels))
	}
	return &ImageSet{Images: images, Labels: labels}, nil
}

// Split cuts the set in two at index n: [0, n) and [n, Len).
// Used to carve a validation split off the training set.
func (s *ImageSet) Split(n int) (*ImageSet, *ImageSet, error) {
	if n < 0 || n > s.Len() {
		return nil, nil, fmt.Errorf("split index %d out of range [0, %d]", n, s.Len())
	}
	shape := s.Images.Shape()
	plane := shape[1] * shape[2] * shape[3]

	first := tensor.New(tensor.Shape{n, shape[1], shape[2], shape[3]})
	copy(first.Data(), s.Images.Data()[:n*plane])
	second := tensor.New(tensor.Shape{s.Len() - n, shape[1], shape[2], shape[3]})
	copy(second.Data(), s.Images.Data()[n*plane:])

	return &ImageSet{Images: first, Labels: s.Labels[:n]},
		&ImageSet{Images: second, Labels: s.Labels[n:]}, nil
}

// Subset copies examples [from, to) into a new set.
func (s *ImageSet) Subset(from, to int) (*ImageSet, error) {
	if from < 0 || to > s.Len() || from > to {
		return nil, fmt.Errorf("subset [%d, %d) out of range [0, %d)", from, to, s.Len())
	}
	shape := s.Images.Shape()
	plane := shape[1] * shape[2] * shape[3]

	out := tensor.New(tensor.Shape{to - from, shape[1], shape[2], shape[3]})
	copy(out.Data(), s.Images.Data()[from*plane:to*plane])
	labels := make([]int, to-from)
	copy(labels, s.Labels[from:to])
	return &ImageSet{Images: out, Labels: labels}, nil
}
