package nakama

import (
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"attimuite/internal/domain"
	"attimuite/internal/narration"
)

// snapshotPayload flattens a snapshot plus its presentation hints for the client.
func snapshotPayload(snap domain.Snapshot, text string) map[string]interface{} {
	return map[string]interface{}{
		"session_id":                snap.SessionID,
		"phase":                     string(snap.Phase),
		"player_hand":               string(snap.PlayerHand),
		"cpu_hand":                  string(snap.CPUHand),
		"player_direction":          string(snap.PlayerDirection),
		"cpu_direction":             string(snap.CPUDirection),
		"is_cpu_attacker":           snap.IsCPUAttacker,
		"final_winner":              string(snap.FinalWinner),
		"message":                   string(snap.Message),
		"message_seq":               snap.MessageSeq,
		"message_text":              text,
		"player_score":              snap.Score.Player,
		"cpu_score":                 snap.Score.CPU,
		"is_transitioning":          snap.IsTransitioning,
		"input_controls_visible":    snap.InputControlsVisible,
		"hand_buttons_visible":      snap.HandButtonsVisible(),
		"direction_buttons_visible": snap.DirectionButtonsVisible(),
		"cpu_image":                 snap.CPUImage(),
		"player_image":              snap.PlayerImage(),
	}
}

func narrationPayload(req narration.Request, text string, clip *narration.SignedClip) map[string]interface{} {
	out := map[string]interface{}{
		"seq":       req.Seq,
		"key":       string(req.Key),
		"language":  req.Language,
		"voice":     req.Voice,
		"speed":     req.Speed,
		"interrupt": req.Interrupt,
		"text":      text,
	}
	if clip != nil {
		out["clip_url"] = clip.URL
		out["clip_token"] = clip.Token
		out["clip_expires_at"] = clip.ExpiresAt
	}
	return out
}

func errorPayload(code int, message string) map[string]interface{} {
	return map[string]interface{}{
		"code":    code,
		"message": message,
	}
}

// encodeStruct serializes fields as a protobuf Struct.
func encodeStruct(fields map[string]interface{}) ([]byte, error) {
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(st)
}

// decodeStruct is the inverse of encodeStruct.
func decodeStruct(data []byte) (map[string]interface{}, error) {
	st := &structpb.Struct{}
	if err := proto.Unmarshal(data, st); err != nil {
		return nil, err
	}
	return st.AsMap(), nil
}

// marshalLabel renders the match label as JSON for Nakama's label queries.
func marshalLabel(fields map[string]interface{}) (string, error) {
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return "", err
	}
	b, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(st)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
