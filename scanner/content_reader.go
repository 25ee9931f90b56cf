package scanner

import (
	"errors"
	"io"
	"os"
	"strings"

	"golang.org/x/exp/mmap"
)

const maxContentScanBytes int64 = 64 * 1024 * 1024

// errTooLarge is returned when a file exceeds the read limit.
var errTooLarge = errors.New("file exceeds the size limit")

var openMmapReader = mmap.Open

// readFileContentWithMode reads the whole file through the requested path.
// Sources are never truncated: a file larger than maxSize is errTooLarge.
func readFileContentWithMode(path string, maxSize int64, mode string, mmapMinSize int64, streamChunkSize int) ([]byte, error) {
	maxSize = clampContentMaxSize(maxSize)
	if mmapMinSize <= 0 {
		mmapMinSize = 128 * 1024
	}
	if streamChunkSize <= 0 {
		streamChunkSize = 256 * 1024
	}
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "mmap":
		return readFileContentMmap(path, maxSize)
	case "auto":
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if info.Size() > maxSize {
			return nil, errTooLarge
		}
		if info.Size() >= mmapMinSize {
			content, err := readFileContentMmap(path, maxSize)
			if err == nil {
				return content, nil
			}
		}
		return readFileContentStream(path, maxSize, streamChunkSize)
	default:
		return readFileContentStream(path, maxSize, streamChunkSize)
	}
}

func readFileContentMmap(path string, maxSize int64) ([]byte, error) {
	maxSize = clampContentMaxSize(maxSize)
	r, err := openMmapReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	size := int64(r.Len())
	if size > maxSize {
		return nil, errTooLarge
	}
	if size == 0 {
		return []byte{}, nil
	}
	buf := make([]byte, size)
	if _, err := r.ReadAt(buf, 0); err != nil && err != io.EOF {
		return nil, err
	}
	return buf, nil
}

func readFileContentStream(path string, maxSize int64, chunkSize int) ([]byte, error) {
	maxSize = clampContentMaxSize(maxSize)
	if chunkSize <= 0 {
		chunkSize = 256 * 1024
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var content []byte
	if stat, err := file.Stat(); err == nil {
		if stat.Size() > maxSize {
			return nil, errTooLarge
		}
		content = make([]byte, 0, stat.Size())
	}
	buffer := make([]byte, chunkSize)
	for {
		n, err := file.Read(buffer)
		if n > 0 {
			if int64(len(content)+n) > maxSize {
				return nil, errTooLarge
			}
			content = append(content, buffer[:n]...)
		}
		if err == io.EOF {
			return content, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// readFileSample returns up to n leading bytes of the file.
func readFileSample(path string, n int) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	buf := make([]byte, n)
	read, err := io.ReadFull(file, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return buf[:read], nil
}

func clampContentMaxSize(maxSize int64) int64 {
	if maxSize <= 0 || maxSize > maxContentScanBytes {
		return maxContentScanBytes
	}
	return maxSize
}
