package nakama

import (
	"context"
	"errors"
	"fmt"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

// recordingLogger keeps Info and Warn lines for assertions.
type recordingLogger struct {
	noopLogger
	infos *[]string
	warns *[]string
}

func newRecordingLogger() recordingLogger {
	return recordingLogger{infos: &[]string{}, warns: &[]string{}}
}

func (l recordingLogger) Info(format string, v ...interface{}) {
	*l.infos = append(*l.infos, fmt.Sprintf(format, v...))
}

func (l recordingLogger) Warn(format string, v ...interface{}) {
	*l.warns = append(*l.warns, fmt.Sprintf(format, v...))
}

type sentMessage struct {
	opCode     int64
	data       []byte
	recipients []runtime.Presence
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	messages     []sentMessage
	labelUpdates int
	lastLabel    string
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.messages = append(md.messages, sentMessage{opCode: opCode, data: append([]byte(nil), data...), recipients: presences})
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labelUpdates++
	md.lastLabel = label
	return nil
}

// byOpCode returns the payloads sent with opCode, decoded.
func (md *mockDispatcher) byOpCode(opCode int64) []map[string]interface{} {
	var out []map[string]interface{}
	for _, m := range md.messages {
		if m.opCode != opCode {
			continue
		}
		fields, err := decodeStruct(m.data)
		if err != nil {
			panic(err)
		}
		out = append(out, fields)
	}
	return out
}

func (md *mockDispatcher) lastState() map[string]interface{} {
	states := md.byOpCode(OpStateChanged)
	if len(states) == 0 {
		return nil
	}
	return states[len(states)-1]
}

type mockPresence struct {
	userID string
}

func (p mockPresence) GetHidden() bool                   { return false }
func (p mockPresence) GetPersistence() bool              { return false }
func (p mockPresence) GetUsername() string               { return p.userID }
func (p mockPresence) GetStatus() string                 { return "" }
func (p mockPresence) GetReason() runtime.PresenceReason { return runtime.PresenceReasonUnknown }
func (p mockPresence) GetUserId() string                 { return p.userID }
func (p mockPresence) GetSessionId() string              { return "session-" + p.userID }
func (p mockPresence) GetNodeId() string                 { return "node" }

type mockMatchData struct {
	mockPresence
	opCode int64
	data   []byte
}

func (m mockMatchData) GetOpCode() int64      { return m.opCode }
func (m mockMatchData) GetData() []byte       { return m.data }
func (m mockMatchData) GetReliable() bool     { return true }
func (m mockMatchData) GetReceiveTime() int64 { return 0 }

// fakeStorage is an in-memory Nakama storage keyed by collection/key/user.
type fakeStorage struct {
	objects  map[string]*api.StorageObject
	readErr  error
	writeErr error
	writes   []*runtime.StorageWrite
	signals  []string
	created  []map[string]interface{}
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string]*api.StorageObject{}}
}

func storageID(collection, key, userID string) string {
	return collection + "/" + key + "/" + userID
}

func (f *fakeStorage) StorageRead(ctx context.Context, reads []*runtime.StorageRead) ([]*api.StorageObject, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	var out []*api.StorageObject
	for _, r := range reads {
		if obj, ok := f.objects[storageID(r.Collection, r.Key, r.UserID)]; ok {
			out = append(out, obj)
		}
	}
	return out, nil
}

func (f *fakeStorage) StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error) {
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	acks := make([]*api.StorageObjectAck, 0, len(writes))
	for _, w := range writes {
		id := storageID(w.Collection, w.Key, w.UserID)
		if _, exists := f.objects[id]; exists && w.Version == "*" {
			return nil, runtime.ErrStorageRejectedVersion
		}
		f.writes = append(f.writes, w)
		f.objects[id] = &api.StorageObject{Collection: w.Collection, Key: w.Key, UserId: w.UserID, Value: w.Value, Version: "v1"}
		acks = append(acks, &api.StorageObjectAck{Collection: w.Collection, Key: w.Key, UserId: w.UserID, Version: "v1"})
	}
	return acks, nil
}

func (f *fakeStorage) MatchSignal(ctx context.Context, id string, data string) (string, error) {
	f.signals = append(f.signals, id+" "+data)
	if id == "gone" {
		return "", errors.New("match not found")
	}
	return `{"ok":true}`, nil
}

func (f *fakeStorage) MatchCreate(ctx context.Context, module string, params map[string]interface{}) (string, error) {
	if module != MatchNameAttimuite {
		return "", errors.New("unknown module")
	}
	f.created = append(f.created, params)
	return "match-1", nil
}

type fixedChooser struct {
	values []int
}

func (f *fixedChooser) Intn(n int) int {
	if len(f.values) == 0 {
		return 0
	}
	v := f.values[0] % n
	f.values = f.values[1:]
	return v
}
