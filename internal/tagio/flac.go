package tagio

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"

	"github.com/aidanlsb/mvtag/internal/atomicfile"
	"github.com/aidanlsb/mvtag/internal/model"
	"github.com/aidanlsb/mvtag/internal/tagmap"
)

// findVorbis returns the index and parsed content of the Vorbis comment
// block, or -1 and nil if the file has none.
func findVorbis(f *flac.File) (int, *flacvorbis.MetaDataBlockVorbisComment, error) {
	for idx, block := range f.Meta {
		if block.Type == flac.VorbisComment {
			cmt, err := flacvorbis.ParseFromMetaDataBlock(*block)
			if err != nil {
				return idx, nil, err
			}
			return idx, cmt, nil
		}
	}
	return -1, nil, nil
}

// ErrNoAudioFrames is returned for FLAC files that end after their metadata.
var ErrNoAudioFrames = errors.New("flac file has no audio frames")

// parseFLAC parses path, turning the panics go-flac raises on truncated
// streams into errors.
func parseFLAC(path string) (f *flac.File, err error) {
	defer func() {
		if r := recover(); r != nil {
			f, err = nil, fmt.Errorf("%w (%v)", ErrNoAudioFrames, r)
		}
	}()
	return flac.ParseFile(path)
}

func splitComment(comment string) (string, string, bool) {
	return strings.Cut(comment, "=")
}

func writeVorbis(path string, entries []entry) error {
	f, err := parseFLAC(path)
	if err != nil {
		return err
	}

	idx, existing, err := findVorbis(f)
	if err != nil {
		return err
	}

	managed := make(map[string]bool, len(entries))
	for _, e := range entries {
		managed[strings.ToUpper(e.key)] = true
	}

	cmt := flacvorbis.New()
	if existing != nil {
		cmt.Vendor = existing.Vendor
		for _, comment := range existing.Comments {
			key, value, ok := splitComment(comment)
			if !ok || managed[strings.ToUpper(key)] {
				continue
			}
			if err := cmt.Add(key, value); err != nil {
				return err
			}
		}
	}
	for _, e := range entries {
		for _, v := range e.values {
			if err := cmt.Add(e.key, v); err != nil {
				return err
			}
		}
	}

	block := cmt.Marshal()
	if idx < 0 {
		f.Meta = append(f.Meta, &block)
	} else {
		f.Meta[idx] = &block
	}

	return atomicfile.WriteFile(path, f.Marshal(), 0)
}

func readVorbis(path string, mapping *tagmap.Mapping) (map[string]model.Value, error) {
	f, err := parseFLAC(path)
	if err != nil {
		return nil, err
	}

	_, cmt, err := findVorbis(f)
	if err != nil || cmt == nil {
		return map[string]model.Value{}, err
	}

	collected := make(map[string][]string)
	var order []string
	for _, comment := range cmt.Comments {
		key, value, ok := splitComment(comment)
		if !ok || value == "" {
			continue
		}
		name, ok := mapping.FieldForKey(tagmap.FormatVorbis, key)
		if !ok {
			continue
		}
		if _, seen := collected[name]; !seen {
			order = append(order, name)
		}
		collected[name] = append(collected[name], value)
	}

	fields := make(map[string]model.Value, len(order))
	for _, name := range order {
		fields[name] = valueOf(collected[name])
	}
	return fields, nil
}
