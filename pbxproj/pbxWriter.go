/**
Licensed to the Apache Software Foundation (ASF) under one
or more contributor license agreements.  See the NOTICE file
distributed with this work for additional information
regarding copyright ownership.  The ASF licenses this file
to you under the Apache License, Version 2.0 (the
'License'); you may not use this file except in compliance
with the License.  You may obtain a copy of the License at
http://www.apache.org/licenses/LICENSE-2.0
Unless required by applicable law or agreed to in writing,
software distributed under the License is distributed on an
'AS IS' BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
KIND, either express or implied.  See the License for the
specific language governing permissions and limitations
under the License.
*/

package pbxproj

import (
	"fmt"
	"os"
	"strings"

	"github.com/gocarrot/xcodeframeworks/pbxparser"
)

const (
	INDENT = "\t"
)

type PbxWriterOption func(w *PbxWriter)

// WithOmitEmpty skips keys whose value is an empty string.
func WithOmitEmpty() PbxWriterOption {
	return func(w *PbxWriter) {
		w.omitEmptyValues = true
	}
}

type PbxWriter struct {
	buffer          strings.Builder
	omitEmptyValues bool
	contents        pbxparser.Object
	indentLevel     int
	err             error
}

func NewPbxWriter(project *PbxProject, options ...PbxWriterOption) *PbxWriter {
	w := &PbxWriter{
		contents: project.Contents(),
	}
	for _, option := range options {
		option(w)
	}
	return w
}

func indent(x int) string {
	if x <= 0 {
		return ""
	}
	return strings.Repeat(INDENT, x)
}

func (w *PbxWriter) write(format string, args ...interface{}) {
	w.buffer.WriteString(indent(w.indentLevel))
	fmt.Fprintf(&w.buffer, format, args...)
}

func (w *PbxWriter) writeNoIndent(format string, args ...interface{}) {
	fmt.Fprintf(&w.buffer, format, args...)
}

func (w *PbxWriter) fail(key string, val interface{}) {
	if w.err == nil {
		w.err = fmt.Errorf("pbxproj: cannot write %s of type %T", key, val)
	}
}

// String renders the whole project file.
func (w *PbxWriter) String() (string, error) {
	w.buffer.Reset()
	w.indentLevel = 0
	w.err = nil
	if w.contents.SliceMap == nil {
		return "", ErrNotParsed
	}

	w.writeHeadComment()
	w.writeProject()
	if w.err != nil {
		return "", w.err
	}
	return w.buffer.String(), nil
}

func (w *PbxWriter) Write(filePath string) error {
	out, err := w.String()
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, []byte(out), 0644)
}

func (w *PbxWriter) writeHeadComment() {
	comment := w.contents.GetString(pbxparser.HeadCommentKey)
	if comment != "" {
		w.writeNoIndent("// %s\n", comment)
	}
}

func (w *PbxWriter) writeProject() {
	proj := w.contents.GetObject(pbxparser.ProjectKey)

	w.write("{\n")
	w.indentLevel++
	proj.ForeachWithFilter(func(key string, val interface{}) pbxparser.IterateActionType {
		if key == pbxparser.ObjectsKey && isObject(val) {
			w.write("%s = {\n", key)
			w.indentLevel++
			w.writeObjectsSections(val.(pbxparser.Object))
			w.indentLevel--
			w.write("};\n")
			return pbxparser.IterateActionContinue
		}
		w.writeEntry(proj, key, val)
		return pbxparser.IterateActionContinue
	}, pbxparser.NonCommentsFilter)
	w.indentLevel--
	w.write("}\n")
}

func (w *PbxWriter) writeObject(obj pbxparser.Object) {
	obj.ForeachWithFilter(func(key string, val interface{}) pbxparser.IterateActionType {
		w.writeEntry(obj, key, val)
		return pbxparser.IterateActionContinue
	}, pbxparser.NonCommentsFilter)
}

func (w *PbxWriter) writeEntry(parent pbxparser.Object, key string, val interface{}) {
	cmt := parent.Comment(key)
	switch {
	case isArray(val):
		w.writeArray(val.([]interface{}), key)
	case isObject(val):
		if cmt != "" {
			w.write("%s /* %s */ = {\n", key, cmt)
		} else {
			w.write("%s = {\n", key)
		}
		w.indentLevel++
		w.writeObject(val.(pbxparser.Object))
		w.indentLevel--
		w.write("};\n")
	case isString(val) || isInt(val):
		str := w.scalar(val)
		if w.omitEmptyValues && str == "" {
			return
		}
		if cmt != "" {
			w.write("%s = %s /* %s */;\n", key, str, cmt)
		} else {
			w.write("%s = %s;\n", key, str)
		}
	default:
		w.fail(key, val)
	}
}

func (w *PbxWriter) scalar(val interface{}) string {
	if isInt(val) {
		return toIntString(val)
	}
	return val.(string)
}

func (w *PbxWriter) writeObjectsSections(obj pbxparser.Object) {
	obj.Foreach(func(key string, val interface{}) pbxparser.IterateActionType {
		section, ok := val.(pbxparser.Object)
		if !ok || section.IsEmpty() {
			return pbxparser.IterateActionContinue
		}
		w.writeNoIndent("\n")
		w.writeSectionComment(key, true)
		w.writeSection(section)
		w.writeSectionComment(key, false)
		return pbxparser.IterateActionContinue
	})
}

func (w *PbxWriter) writeArray(arr []interface{}, name string) {
	w.write("%s = (\n", name)
	w.indentLevel++
	for _, elem := range arr {
		switch {
		case isObject(elem):
			obj := elem.(pbxparser.Object)
			if value, comment, ok := commentValue(obj); ok {
				w.write("%s /* %s */,\n", value, comment)
			} else {
				w.write("{\n")
				w.indentLevel++
				w.writeObject(obj)
				w.indentLevel--
				w.write("},\n")
			}
		case isString(elem) || isInt(elem):
			w.write("%s,\n", w.scalar(elem))
		default:
			w.fail(name, elem)
		}
	}
	w.indentLevel--
	w.write(");\n")
}

func commentValue(obj pbxparser.Object) (string, string, bool) {
	if obj.Size() != 2 {
		return "", "", false
	}
	value, comment := obj.GetString("value"), obj.GetString("comment")
	return value, comment, value != "" && comment != ""
}

func (w *PbxWriter) writeSectionComment(name string, begin bool) {
	if begin {
		w.writeNoIndent("/* Begin %s section */\n", name)
	} else {
		w.writeNoIndent("/* End %s section */\n", name)
	}
}

func (w *PbxWriter) writeSection(section pbxparser.Object) {
	section.ForeachWithFilter(func(key string, val interface{}) pbxparser.IterateActionType {
		obj, ok := val.(pbxparser.Object)
		if !ok {
			w.fail(key, val)
			return pbxparser.IterateActionContinue
		}
		isa := obj.GetString("isa")
		if isa == "PBXBuildFile" || isa == "PBXFileReference" {
			w.writeInlineObject(key, section.Comment(key), obj)
		} else {
			w.writeEntry(section, key, obj)
		}
		return pbxparser.IterateActionContinue
	}, pbxparser.NonCommentsFilter)
}

func (w *PbxWriter) writeInlineObjectHelp(output *strings.Builder, name string, desc string, ref pbxparser.Object) {
	if desc != "" {
		fmt.Fprintf(output, "%s /* %s */ = {", name, desc)
	} else {
		fmt.Fprintf(output, "%s = {", name)
	}

	ref.ForeachWithFilter(func(key string, val interface{}) pbxparser.IterateActionType {
		cmt := ref.Comment(key)
		switch {
		case isArray(val):
			fmt.Fprintf(output, "%s = (", key)
			for _, elem := range val.([]interface{}) {
				if obj, ok := elem.(pbxparser.Object); ok {
					if value, comment, ok := commentValue(obj); ok {
						fmt.Fprintf(output, "%s /* %s */, ", value, comment)
						continue
					}
					w.fail(key, elem)
					continue
				}
				if !isString(elem) && !isInt(elem) {
					w.fail(key, elem)
					continue
				}
				fmt.Fprintf(output, "%s, ", w.scalar(elem))
			}
			output.WriteString("); ")
		case isObject(val):
			w.writeInlineObjectHelp(output, key, cmt, val.(pbxparser.Object))
			output.WriteString(" ")
		case isString(val) || isInt(val):
			str := w.scalar(val)
			if w.omitEmptyValues && str == "" {
				return pbxparser.IterateActionContinue
			}
			if cmt != "" {
				fmt.Fprintf(output, "%s = %s /* %s */; ", key, str, cmt)
			} else {
				fmt.Fprintf(output, "%s = %s; ", key, str)
			}
		default:
			w.fail(key, val)
		}
		return pbxparser.IterateActionContinue
	}, pbxparser.NonCommentsFilter)

	output.WriteString("};")
}

func (w *PbxWriter) writeInlineObject(name string, desc string, ref pbxparser.Object) {
	var output strings.Builder
	w.writeInlineObjectHelp(&output, name, desc, ref)
	w.write("%s\n", strings.TrimSpace(output.String()))
}
