package domain

import (
	"fmt"
	"regexp"
)

// imagePathPattern matches provider URLs like https://images.dog.ceo/breeds/hound-afghan/n02088094_1003.jpg
// and the three-segment variant /breeds/<category>/<sub>/<file>.<ext>.
var imagePathPattern = regexp.MustCompile(`/breeds/(.+?)/(?:(.+?)/)?(.+?)\.\w+$`)

// ImageRecord is a single image. ID is only a stable render key.
type ImageRecord struct {
	ID  string `json:"id"`
	Src string `json:"src"`
}

// NewImageRecord derives the record ID from the structure of src.
func NewImageRecord(src string) ImageRecord {
	return ImageRecord{
		ID:  imageID(src),
		Src: src,
	}
}

func imageID(src string) string {
	matches := imagePathPattern.FindStringSubmatch(src)
	if matches == nil {
		return src
	}

	sub := matches[2]
	if sub == "" {
		sub = "none"
	}
	return fmt.Sprintf("%s-%s-%s", matches[1], sub, matches[3])
}

// ImageList is an immutable image sequence. Consumers compare lists by pointer:
// every fetch produces a new list even when its content equals an earlier one.
type ImageList struct {
	records []ImageRecord
}

// NewImageList builds a list from provider URLs.
func NewImageList(srcs []string) *ImageList {
	records := make([]ImageRecord, 0, len(srcs))
	for _, src := range srcs {
		records = append(records, NewImageRecord(src))
	}
	return &ImageList{records: records}
}

// ImageListOf wraps records in a new list.
func ImageListOf(records ...ImageRecord) *ImageList {
	return &ImageList{records: append([]ImageRecord(nil), records...)}
}

// EmptyImageList returns a new list without records.
func EmptyImageList() *ImageList {
	return &ImageList{}
}

// Len is nil-safe; a nil list is empty.
func (l *ImageList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.records)
}

// At returns the record at index i.
func (l *ImageList) At(i int) ImageRecord {
	return l.records[i]
}

// Records returns a copy of the records.
func (l *ImageList) Records() []ImageRecord {
	if l == nil {
		return nil
	}
	return append([]ImageRecord(nil), l.records...)
}
