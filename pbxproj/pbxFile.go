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
	"path"
	"strings"
)

const (
	DEFAULT_SOURCETREE     = "\"<group>\""
	DEFAULT_GROUP          = "Resources"
	DEFAULT_FILETYPE       = "unknown"
	DEFAULT_ENCODING_VALUE = 4
	SDKROOT_SOURCETREE     = "SDKROOT"
)

var FILETYPE_BY_EXTENSION = map[string]string{
	"a":           "archive.ar",
	"app":         "wrapper.application",
	"appex":       "wrapper.app-extension",
	"bundle":      "wrapper.plug-in",
	"c":           "sourcecode.c.c",
	"dylib":       "compiled.mach-o.dylib",
	"framework":   "wrapper.framework",
	"h":           "sourcecode.c.h",
	"m":           "sourcecode.c.objc",
	"mm":          "sourcecode.cpp.objcpp",
	"markdown":    "text",
	"pch":         "sourcecode.c.h",
	"plist":       "text.plist.xml",
	"sh":          "text.script.sh",
	"swift":       "sourcecode.swift",
	"tbd":         "sourcecode.text-based-dylib-definition",
	"xcassets":    "folder.assetcatalog",
	"xcconfig":    "text.xcconfig",
	"xcdatamodel": "wrapper.xcdatamodel",
	"xcodeproj":   "wrapper.pb-project",
	"xib":         "file.xib",
	"strings":     "text.plist.strings",
}

var GROUP_BY_FILETYPE = map[string]string{
	"archive.ar":                             "Frameworks",
	"compiled.mach-o.dylib":                  "Frameworks",
	"sourcecode.text-based-dylib-definition": "Frameworks",
	"wrapper.framework":                      "Frameworks",
	"sourcecode.c.h":                         "Resources",
	"sourcecode.c.c":                         "Sources",
	"sourcecode.c.objc":                      "Sources",
	"sourcecode.cpp.objcpp":                  "Sources",
	"sourcecode.swift":                       "Sources",
}

// Build phase isa that links or copies a file of the given group.
var BUILDPHASE_BY_GROUP = map[string]string{
	"Frameworks": "PBXFrameworksBuildPhase",
	"Sources":    "PBXSourcesBuildPhase",
	"Resources":  "PBXResourcesBuildPhase",
}

var PATH_BY_FILETYPE = map[string]string{
	"compiled.mach-o.dylib":                  "usr/lib/",
	"sourcecode.text-based-dylib-definition": "usr/lib/",
	"wrapper.framework":                      "System/Library/Frameworks/",
}

var SOURCETREE_BY_FILETYPE = map[string]string{
	"compiled.mach-o.dylib":                  SDKROOT_SOURCETREE,
	"sourcecode.text-based-dylib-definition": SDKROOT_SOURCETREE,
	"wrapper.framework":                      SDKROOT_SOURCETREE,
}

var ENCODING_BY_FILETYPE = map[string]int{
	"sourcecode.c.c":        DEFAULT_ENCODING_VALUE,
	"sourcecode.c.h":        DEFAULT_ENCODING_VALUE,
	"sourcecode.c.objc":     DEFAULT_ENCODING_VALUE,
	"sourcecode.cpp.objcpp": DEFAULT_ENCODING_VALUE,
	"sourcecode.swift":      DEFAULT_ENCODING_VALUE,
	"text":                  DEFAULT_ENCODING_VALUE,
	"text.plist.xml":        DEFAULT_ENCODING_VALUE,
	"text.script.sh":        DEFAULT_ENCODING_VALUE,
	"text.xcconfig":         DEFAULT_ENCODING_VALUE,
	"text.plist.strings":    DEFAULT_ENCODING_VALUE,
}

type PbxFileOptions struct {
	LastKnownFileType string
	SourceTree        string
}

// PbxFile describes a file about to be referenced by the project.
type PbxFile struct {
	Basename          string
	FileRef           string
	Uuid              string
	LastKnownFileType string
	Group             string
	Path              string
	SourceTree        string
	FileEncoding      int
}

func newPbxFile(filePath string, options PbxFileOptions) *PbxFile {
	filePath = strings.TrimPrefix(path.Clean(filePath), "./")
	pbxfile := PbxFile{
		Basename: path.Base(filePath),
	}

	if options.LastKnownFileType != "" {
		pbxfile.LastKnownFileType = options.LastKnownFileType
	} else {
		pbxfile.LastKnownFileType = detectType(filePath)
	}
	pbxfile.Group = pbxfile.detectGroup()
	pbxfile.FileEncoding = ENCODING_BY_FILETYPE[unquoted(pbxfile.LastKnownFileType)]

	if options.SourceTree != "" {
		pbxfile.SourceTree = options.SourceTree
	} else {
		pbxfile.SourceTree = pbxfile.detectSourcetree()
	}
	pbxfile.Path = pbxfile.defaultPath(filePath)
	return &pbxfile
}

func detectType(filePath string) string {
	extension := strings.TrimPrefix(path.Ext(filePath), ".")
	filetype, found := FILETYPE_BY_EXTENSION[extension]
	if !found {
		return DEFAULT_FILETYPE
	}
	return filetype
}

func (pbxfile *PbxFile) detectGroup() string {
	if path.Ext(pbxfile.Basename) == ".xcdatamodeld" {
		return "Sources"
	}
	groupName, ok := GROUP_BY_FILETYPE[unquoted(pbxfile.LastKnownFileType)]
	if !ok {
		return DEFAULT_GROUP
	}
	return groupName
}

func (pbxfile *PbxFile) detectSourcetree() string {
	sourcetree, ok := SOURCETREE_BY_FILETYPE[unquoted(pbxfile.LastKnownFileType)]
	if !ok {
		return DEFAULT_SOURCETREE
	}
	return sourcetree
}

// SDK files live at a fixed location under the SDK root whatever directory
// the caller gave.
func (pbxfile *PbxFile) defaultPath(filePath string) string {
	if unquoted(pbxfile.SourceTree) != SDKROOT_SOURCETREE {
		return filePath
	}
	defaultPath, ok := PATH_BY_FILETYPE[unquoted(pbxfile.LastKnownFileType)]
	if !ok {
		return filePath
	}
	return path.Join(defaultPath, pbxfile.Basename)
}

func (pbxfile *PbxFile) buildPhaseIsa() string {
	return BUILDPHASE_BY_GROUP[pbxfile.Group]
}
