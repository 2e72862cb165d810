package pbxparser

import (
	"reflect"
	"strings"
)

type IterateActionType = int8

const (
	IterateActionContinue IterateActionType = iota
	IterateActionBreak
)

// CommentKeySuffix marks the key holding the /* */ annotation of its sibling.
const CommentKeySuffix = "_comment"

type ObjectItem = SliceItem

// Object is an ordered plist dictionary.
type Object struct {
	*SliceMap
}

func NewObjectItem(key string, value interface{}) ObjectItem {
	return SliceItem{key, value}
}

func NewObject() Object {
	return Object{
		SliceMap: NewSliceMap(),
	}
}

func NewObjectWithData(items []ObjectItem) Object {
	o := NewObject()
	for _, item := range items {
		o.Set(item.key, item.data)
	}
	return o
}

// NewCommentValue builds the {value, comment} pair used for annotated array elements.
func NewCommentValue(value, comment string) Object {
	return NewObjectWithData([]ObjectItem{
		NewObjectItem("value", value),
		NewObjectItem("comment", comment),
	})
}

func CommentKey(key string) string {
	return key + CommentKeySuffix
}

func IsCommentKey(key string) bool {
	return strings.HasSuffix(key, CommentKeySuffix)
}

func (o Object) IsEmpty() bool {
	if o.SliceMap == nil || o.sl == nil {
		return true
	}
	return o.Size() == 0
}

// GetObject returns the dictionary stored at key, or a detached empty one.
func (o Object) GetObject(key string) Object {
	if o.SliceMap == nil {
		return NewObject()
	}
	if value, ok := o.Get(key); ok {
		if obj, ok := value.(Object); ok {
			return obj
		}
	}
	return NewObject()
}

func (o Object) GetString(key string) string {
	if o.SliceMap == nil {
		return ""
	}
	if value, ok := o.Get(key); ok {
		if v, ok := value.(string); ok {
			return v
		}
	}
	return ""
}

func (o Object) GetInt(key string) int {
	if o.SliceMap == nil {
		return 0
	}
	if value, ok := o.Get(key); ok {
		switch value.(type) {
		case int, int8, int16, int32, int64:
			return int(reflect.ValueOf(value).Int())
		}
	}
	return 0
}

func (o Object) GetArray(key string) []interface{} {
	if o.SliceMap == nil {
		return nil
	}
	if value, ok := o.Get(key); ok {
		if arr, ok := value.([]interface{}); ok {
			return arr
		}
	}
	return nil
}

// Comment returns the annotation attached to key, if any.
func (o Object) Comment(key string) string {
	return o.GetString(CommentKey(key))
}

type ApplyFunc = func(key string, val interface{}) IterateActionType
type FilterFunc = func(key string, val interface{}) bool

func (o Object) Foreach(apply ApplyFunc) {
	o.ForeachWithFilter(apply, func(string, interface{}) bool { return true })
}

func (o Object) ForeachWithFilter(apply ApplyFunc, filter FilterFunc) {
	if o.IsEmpty() {
		return
	}
	for _, item := range o.Items() {
		if item.data == nil {
			continue
		}
		if filter(item.key, item.data) {
			if apply(item.key, item.data) == IterateActionBreak {
				break
			}
		}
	}
}

func NonCommentsFilter(key string, _ interface{}) bool {
	return !IsCommentKey(key)
}

type ObjectWithUUID struct {
	Object
	UUID string
}
