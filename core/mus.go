package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the persisted domain types.

// IDMUS serializes IDs as varint-encoded uint64 values.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (id ID, n int, err error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) (size int) {
	return varint.Uint64.Size(uint64(id))
}

func (idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

// TitleMUS serializes Title records field by field in declaration order.
var TitleMUS = titleMUS{}

type titleMUS struct{}

func (titleMUS) Marshal(t Title, bs []byte) (n int) {
	n = IDMUS.Marshal(t.Id, bs)
	n += ord.String.Marshal(t.Text, bs[n:])
	n += ord.String.Marshal(string(t.Status), bs[n:])
	n += raw.TimeUnixMilli.Marshal(t.CreatedAt, bs[n:])
	return n
}

func (titleMUS) Unmarshal(bs []byte) (t Title, n int, err error) {
	t.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	t.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var status string
	status, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	t.Status = TitleStatus(status)
	t.CreatedAt, n1, err = raw.TimeUnixMilli.Unmarshal(bs[n:])
	n += n1
	return
}

func (titleMUS) Size(t Title) (size int) {
	size = IDMUS.Size(t.Id)
	size += ord.String.Size(t.Text)
	size += ord.String.Size(string(t.Status))
	size += raw.TimeUnixMilli.Size(t.CreatedAt)
	return size
}

func (titleMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMilli.Skip(bs[n:])
	n += n1
	return
}
