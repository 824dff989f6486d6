package backend

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"
)

// Commander sends named commands to the backend; satisfied by Client.
type Commander interface {
	SendCommand(name string, params any)
}

// Document is the handle for one backend view: an opaque view identifier
// plus the command channel. The view core never owns document content, only
// this handle.
type Document struct {
	viewID string
	conn   Commander
	log    *zap.Logger
}

// NewDocument creates a handle with a fresh view identifier.
func NewDocument(conn Commander, log *zap.Logger) *Document {
	if log == nil {
		log = zap.NewNop()
	}
	return &Document{
		viewID: uuid.NewString(),
		conn:   conn,
		log:    log,
	}
}

// ViewID returns the document's view identifier.
func (d *Document) ViewID() string {
	return d.viewID
}

// RequestLines asks the backend to push lines [first, last).
func (d *Document) RequestLines(first, last int) {
	p := d.params()
	p, _ = sjson.SetBytes(p, "first", first)
	p, _ = sjson.SetBytes(p, "last", last)
	d.conn.SendCommand("request_lines", json.RawMessage(p))
	d.log.Debug("request lines", zap.Int("first", first), zap.Int("last", last))
}

// Insert inserts chars at the backend's cursor positions.
func (d *Document) Insert(chars string) {
	p := d.params()
	p, _ = sjson.SetBytes(p, "chars", chars)
	d.conn.SendCommand("insert", json.RawMessage(p))
}

// DeleteBackward deletes one unit before each cursor.
func (d *Document) DeleteBackward() {
	d.conn.SendCommand("delete_backward", json.RawMessage(d.params()))
}

// PointSelect moves the cursor to a buffer position resolved by hit-testing.
func (d *Document) PointSelect(line, column int) {
	p := d.params()
	p, _ = sjson.SetBytes(p, "line", line)
	p, _ = sjson.SetBytes(p, "column", column)
	d.conn.SendCommand("point_select", json.RawMessage(p))
}

// SendNamed passes an arbitrary editing command through to the backend,
// tagged with this document's view. Whether the backend recognizes the name
// is its concern; no result ever comes back.
func (d *Document) SendNamed(name string) {
	d.conn.SendCommand(name, json.RawMessage(d.params()))
}

// params starts a payload carrying the view identifier.
func (d *Document) params() []byte {
	p, _ := sjson.SetBytes([]byte(`{}`), "view_id", d.viewID)
	return p
}
