package tagio

import (
	"strings"

	"github.com/bogem/id3v2/v2"

	"github.com/aidanlsb/mvtag/internal/model"
	"github.com/aidanlsb/mvtag/internal/tagmap"
)

const (
	commentFrameID  = "COMM"
	userTextFrameID = "TXXX"

	// ID3v2.4 separates multiple text values with NUL.
	id3ValueSep = "\x00"
)

func writeID3(path string, entries []entry) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetVersion(4)

	userText := make(map[string][]string)
	for _, e := range entries {
		switch {
		case strings.HasPrefix(e.key, tagmap.ID3UserTextPrefix):
			userText[strings.TrimPrefix(e.key, tagmap.ID3UserTextPrefix)] = e.values
		case e.key == commentFrameID:
			tag.DeleteFrames(commentFrameID)
			if len(e.values) > 0 {
				tag.AddCommentFrame(id3v2.CommentFrame{
					Encoding: id3v2.EncodingUTF8,
					Language: "eng",
					Text:     strings.Join(e.values, model.ListSeparator),
				})
			}
		default:
			tag.DeleteFrames(e.key)
			if len(e.values) > 0 {
				tag.AddTextFrame(e.key, id3v2.EncodingUTF8, strings.Join(e.values, id3ValueSep))
			}
		}
	}
	rewriteUserText(tag, userText)

	return tag.Save()
}

// rewriteUserText replaces the TXXX frames whose description is managed,
// keeping all others.
func rewriteUserText(tag *id3v2.Tag, managed map[string][]string) {
	if len(managed) == 0 {
		return
	}

	var kept []id3v2.UserDefinedTextFrame
	for _, f := range tag.GetFrames(userTextFrameID) {
		udtf, ok := f.(id3v2.UserDefinedTextFrame)
		if !ok {
			continue
		}
		if _, isManaged := lookupFold(managed, udtf.Description); !isManaged {
			kept = append(kept, udtf)
		}
	}

	tag.DeleteFrames(userTextFrameID)
	for _, f := range kept {
		tag.AddUserDefinedTextFrame(f)
	}
	for desc, values := range managed {
		if len(values) == 0 {
			continue
		}
		tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
			Encoding:    id3v2.EncodingUTF8,
			Description: desc,
			Value:       strings.Join(values, id3ValueSep),
		})
	}
}

func lookupFold(m map[string][]string, key string) ([]string, bool) {
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

func readID3(path string, mapping *tagmap.Mapping) (map[string]model.Value, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, err
	}
	defer tag.Close()

	userText := make(map[string]string)
	for _, f := range tag.GetFrames(userTextFrameID) {
		if udtf, ok := f.(id3v2.UserDefinedTextFrame); ok {
			userText[strings.ToLower(udtf.Description)] = udtf.Value
		}
	}

	fields := make(map[string]model.Value)
	for _, name := range mapping.Names() {
		key := mapping.Fields[name].ID3
		var raw string
		switch {
		case key == "":
			continue
		case strings.HasPrefix(key, tagmap.ID3UserTextPrefix):
			raw = userText[strings.ToLower(strings.TrimPrefix(key, tagmap.ID3UserTextPrefix))]
		case key == commentFrameID:
			for _, f := range tag.GetFrames(commentFrameID) {
				if cf, ok := f.(id3v2.CommentFrame); ok {
					raw = cf.Text
					break
				}
			}
		default:
			raw = textFrame(tag, key)
		}

		values := nonEmpty(strings.Split(strings.Trim(raw, id3ValueSep), id3ValueSep))
		if len(values) > 0 {
			fields[name] = valueOf(values)
		}
	}
	return fields, nil
}

// textFrame returns the text of frame id. Frame IDs outside the standard
// set (such as GRP1 in older ID3 libraries) may parse as unknown frames, so
// their body is decoded directly.
func textFrame(tag *id3v2.Tag, id string) string {
	switch f := tag.GetLastFrame(id).(type) {
	case id3v2.TextFrame:
		return f.Text
	case id3v2.UnknownFrame:
		if len(f.Body) > 1 && (f.Body[0] == id3v2.EncodingUTF8.Key || f.Body[0] == id3v2.EncodingISO.Key) {
			return string(f.Body[1:])
		}
	}
	return ""
}
