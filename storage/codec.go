package storage

import (
	"fmt"
	"strings"
	"time"
	"wisp/contract"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	documentPrefix = "doc:"
	idSeparator    = "|"
)

// documentKey is formatted as "doc:{collection}|{id}".
func documentKey(collection, id string) []byte {
	return []byte(collectionPrefix(collection) + id)
}

func collectionPrefix(collection string) string {
	return documentPrefix + collection + idSeparator
}

// ParseKey splits a document key back into its collection and id.
func ParseKey(key []byte) (collection, id string, ok bool) {
	s := string(key)
	if !strings.HasPrefix(s, documentPrefix) {
		return "", "", false
	}
	s = strings.TrimPrefix(s, documentPrefix)
	idx := strings.LastIndex(s, idSeparator)
	if idx < 0 {
		return "", "", false
	}
	return s[:idx], s[idx+1:], true
}

func encodeDocument(doc contract.Document) ([]byte, error) {
	fields := doc.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	st, err := structpb.NewStruct(map[string]any{
		"id":         doc.ID,
		"createTime": doc.CreateTime.UTC().Format(time.RFC3339Nano),
		"updateTime": doc.UpdateTime.UTC().Format(time.RFC3339Nano),
		"fields":     fields,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding document %s: %w", doc.ID, err)
	}
	return proto.Marshal(st)
}

// DecodeDocument reads a value written by the badger store.
func DecodeDocument(value []byte) (contract.Document, error) {
	var st structpb.Struct
	if err := proto.Unmarshal(value, &st); err != nil {
		return contract.Document{}, err
	}
	m := st.AsMap()

	id, _ := m["id"].(string)
	createTime, err := parseTime(m["createTime"])
	if err != nil {
		return contract.Document{}, fmt.Errorf("document %s: %w", id, err)
	}
	updateTime, err := parseTime(m["updateTime"])
	if err != nil {
		return contract.Document{}, fmt.Errorf("document %s: %w", id, err)
	}
	fields, _ := m["fields"].(map[string]any)
	if fields == nil {
		fields = map[string]any{}
	}
	return contract.Document{
		ID:         id,
		Fields:     fields,
		CreateTime: createTime,
		UpdateTime: updateTime,
	}, nil
}

func parseTime(v any) (time.Time, error) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("missing timestamp")
	}
	return time.Parse(time.RFC3339Nano, s)
}
