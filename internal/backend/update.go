package backend

import (
	"errors"

	"github.com/tidwall/gjson"

	"github.com/dshills/textview/internal/linecache"
)

// ErrMalformedUpdate indicates an update push that could not be decoded.
var ErrMalformedUpdate = errors.New("malformed update push")

// Update is a decoded line push: consecutive lines starting at First for the
// view identified by ViewID.
type Update struct {
	ViewID string
	First  int
	Lines  []*linecache.Line
}

// DecodeUpdate parses an update notification's params. The payload shape is
// schema-loose on the backend side, so fields are extracted individually:
//
//	{
//	  "view_id": "...",
//	  "first": 0,
//	  "lines": [
//	    {"text": "héllo", "styles": [[0,2,5],[3,5,0]], "cursor": [5]},
//	    ...
//	  ]
//	}
//
// Styles triples are [startByte, endByte, styleID]; style 0 is selection.
func DecodeUpdate(params []byte) (Update, error) {
	if !gjson.ValidBytes(params) {
		return Update{}, ErrMalformedUpdate
	}
	root := gjson.ParseBytes(params)

	u := Update{
		ViewID: root.Get("view_id").String(),
		First:  int(root.Get("first").Int()),
	}
	if u.First < 0 {
		return Update{}, ErrMalformedUpdate
	}

	ok := true
	root.Get("lines").ForEach(func(_, v gjson.Result) bool {
		line := &linecache.Line{Text: v.Get("text").String()}

		v.Get("styles").ForEach(func(_, s gjson.Result) bool {
			triple := s.Array()
			if len(triple) != 3 {
				ok = false
				return false
			}
			line.Styles = append(line.Styles, linecache.Span{
				Start: int(triple[0].Int()),
				End:   int(triple[1].Int()),
				Style: int(triple[2].Int()),
			})
			return true
		})

		v.Get("cursor").ForEach(func(_, c gjson.Result) bool {
			line.Cursors = append(line.Cursors, int(c.Int()))
			return true
		})

		u.Lines = append(u.Lines, line)
		return ok
	})
	if !ok {
		return Update{}, ErrMalformedUpdate
	}
	return u, nil
}
