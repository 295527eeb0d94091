package notify

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitecfg/internal/foundation/errors"
	"git.home.luguber.info/inful/sitecfg/internal/manifest"
	"git.home.luguber.info/inful/sitecfg/internal/site"
)

type fakeConn struct {
	subject    string
	data       []byte
	publishErr error
	flushErr   error
	closed     bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.subject, f.data = subject, data
	return f.publishErr
}
func (f *fakeConn) FlushWithContext(context.Context) error { return f.flushErr }
func (f *fakeConn) Close()                                 { f.closed = true }

func sampleManifest() *manifest.ResolutionManifest {
	m := manifest.New(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	m.Inputs = manifest.Inputs{Document: "sitecfg.yaml", DocumentHash: "d"}
	m.Status = manifest.StatusInvalid
	m.Warnings = []string{"ignoring unknown key \"theme\""}
	m.Diagnostics = site.Diagnostics{{Path: "title", Message: "must not be empty"}}
	return m
}

func TestNATSPublisherPublish(t *testing.T) {
	conn := &fakeConn{}
	p := &NATSPublisher{conn: conn, subject: "sitecfg.runs"}
	m := sampleManifest()

	require.NoError(t, p.Publish(context.Background(), EventFromManifest(m)))
	require.Equal(t, "sitecfg.runs", conn.subject)

	var ev RunEvent
	require.NoError(t, json.Unmarshal(conn.data, &ev))
	require.Equal(t, m.ID, ev.RunID)
	require.Equal(t, manifest.StatusInvalid, ev.Status)
	require.Equal(t, 1, ev.Warnings)
	require.Equal(t, m.Diagnostics, ev.Diagnostics)

	require.NoError(t, p.Close())
	require.True(t, conn.closed)
}

func TestNATSPublisherErrorsAreClassified(t *testing.T) {
	p := &NATSPublisher{conn: &fakeConn{publishErr: stderrors.New("connection closed")}, subject: "s"}
	err := p.Publish(context.Background(), RunEvent{})
	require.True(t, errors.HasCategory(err, errors.CategoryNotify))

	p = &NATSPublisher{conn: &fakeConn{flushErr: context.DeadlineExceeded}, subject: "s"}
	err = p.Publish(context.Background(), RunEvent{})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewNATSPublisherUnreachable(t *testing.T) {
	_, err := NewNATSPublisher("nats://127.0.0.1:1", "sitecfg.runs")
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryNotify))
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	require.NoError(t, p.Publish(context.Background(), RunEvent{}))
	require.NoError(t, p.Close())
}
