package pbxproj

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/gocarrot/xcodeframeworks/pbxparser"
)

func isObject(obj interface{}) bool {
	_, ok := obj.(pbxparser.Object)
	return ok
}

func isArray(obj interface{}) bool {
	_, ok := obj.([]interface{})
	return ok
}

func isString(obj interface{}) bool {
	_, ok := obj.(string)
	return ok
}

func isInt(obj interface{}) bool {
	switch obj.(type) {
	case int, int8, int16, int32, int64:
		return true
	}
	return false
}

func toIntString(obj interface{}) string {
	switch obj.(type) {
	case int, int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(obj).Int(), 10)
	}
	return ""
}

var unquotedRegex = regexp.MustCompile(`(^")|("$)`)

func unquoted(text string) string {
	if text == "" {
		return text
	}
	return unquotedRegex.ReplaceAllString(text, "")
}

var bareStringRegex = regexp.MustCompile(`^[A-Za-z0-9_$/:.]+$`)

// quoted renders s as a plist string, leaving bare-safe and already quoted
// values alone.
func quoted(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s
	}
	if bareStringRegex.MatchString(s) {
		return s
	}
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`).Replace(s)
	return `"` + escaped + `"`
}

func addToObjectList(obj pbxparser.Object, key string, val interface{}) {
	if obj.SliceMap == nil {
		return
	}
	list := obj.GetArray(key)
	obj.Set(key, append(list, val))
}
