package backend

import (
	"encoding/json"
	"testing"

	"github.com/tidwall/gjson"
)

// fakeConn records commands instead of sending them.
type fakeConn struct {
	names  []string
	params []string
}

func (f *fakeConn) SendCommand(name string, params any) {
	f.names = append(f.names, name)
	raw, _ := params.(json.RawMessage)
	f.params = append(f.params, string(raw))
}

func TestNewDocumentViewID(t *testing.T) {
	conn := &fakeConn{}
	a := NewDocument(conn, nil)
	b := NewDocument(conn, nil)

	if a.ViewID() == "" {
		t.Error("ViewID should not be empty")
	}
	if a.ViewID() == b.ViewID() {
		t.Error("documents should get distinct view identifiers")
	}
}

func TestRequestLines(t *testing.T) {
	conn := &fakeConn{}
	d := NewDocument(conn, nil)

	d.RequestLines(0, 20)

	if len(conn.names) != 1 || conn.names[0] != "request_lines" {
		t.Fatalf("commands = %v, want [request_lines]", conn.names)
	}
	p := gjson.Parse(conn.params[0])
	if got := p.Get("first").Int(); got != 0 {
		t.Errorf("first = %d, want 0", got)
	}
	if got := p.Get("last").Int(); got != 20 {
		t.Errorf("last = %d, want 20", got)
	}
	if got := p.Get("view_id").String(); got != d.ViewID() {
		t.Errorf("view_id = %q, want %q", got, d.ViewID())
	}
}

func TestInsert(t *testing.T) {
	conn := &fakeConn{}
	d := NewDocument(conn, nil)

	d.Insert("héllo")

	if conn.names[0] != "insert" {
		t.Fatalf("command = %q, want insert", conn.names[0])
	}
	if got := gjson.Parse(conn.params[0]).Get("chars").String(); got != "héllo" {
		t.Errorf("chars = %q, want héllo", got)
	}
}

func TestDeleteBackward(t *testing.T) {
	conn := &fakeConn{}
	d := NewDocument(conn, nil)

	d.DeleteBackward()

	if conn.names[0] != "delete_backward" {
		t.Fatalf("command = %q, want delete_backward", conn.names[0])
	}
	if got := gjson.Parse(conn.params[0]).Get("view_id").String(); got != d.ViewID() {
		t.Errorf("view_id = %q, want %q", got, d.ViewID())
	}
}

func TestSendNamedPassthrough(t *testing.T) {
	conn := &fakeConn{}
	d := NewDocument(conn, nil)

	d.SendNamed("transpose")

	if conn.names[0] != "transpose" {
		t.Errorf("command = %q, want transpose", conn.names[0])
	}
}
