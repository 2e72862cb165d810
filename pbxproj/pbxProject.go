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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gocarrot/xcodeframeworks/pbxparser"
	"github.com/gofrs/uuid"
)

var ErrNotParsed = errors.New("pbxproj: project has not been parsed")

// BackupTimeLayout is the ddmmyy-HHMMSS stamp in backup file names.
const BackupTimeLayout = "020106-150405"

type PbxProject struct {
	filePath          string
	pbxContents       pbxparser.Object
	topProjectSection pbxparser.Object
	pbxObjectSection  pbxparser.Object
	uuids             map[string]struct{}
	modified          bool
}

func NewPbxProject(filename string) PbxProject {
	return PbxProject{
		filePath: filename,
		uuids:    make(map[string]struct{}),
	}
}

func (p *PbxProject) FilePath() string {
	return p.filePath
}

func (p *PbxProject) Contents() pbxparser.Object {
	return p.pbxContents
}

// Modified reports whether any file has been added since Parse.
func (p *PbxProject) Modified() bool {
	return p.modified
}

func (p *PbxProject) Parse() error {
	file, err := os.Open(p.filePath)
	if err != nil {
		return fmt.Errorf("open project %s: %w", p.filePath, err)
	}
	defer file.Close()
	return p.ParseReader(file)
}

func (p *PbxProject) ParseReader(r io.Reader) error {
	contents, err := pbxparser.Parse(r)
	if err != nil {
		return fmt.Errorf("parse project %s: %w", p.filePath, err)
	}
	topProjectSection := contents.GetObject(pbxparser.ProjectKey)
	if !topProjectSection.Has(pbxparser.ObjectsKey) {
		return fmt.Errorf("parse project %s: no objects dictionary", p.filePath)
	}

	p.pbxContents = contents
	p.topProjectSection = topProjectSection
	p.pbxObjectSection = topProjectSection.GetObject(pbxparser.ObjectsKey)
	p.modified = false
	p.buildExistUuids()
	slog.Debug("Parsed project.", "path", p.filePath, "sections", p.pbxObjectSection.Size(), "objects", len(p.uuids))
	return nil
}

func (p *PbxProject) parsed() bool {
	return p.pbxObjectSection.SliceMap != nil
}

func (p *PbxProject) buildExistUuids() {
	uuids := make(map[string]struct{})
	p.pbxObjectSection.Foreach(func(_ string, v interface{}) pbxparser.IterateActionType {
		section, ok := v.(pbxparser.Object)
		if !ok {
			return pbxparser.IterateActionContinue
		}
		section.ForeachWithFilter(func(key string, _ interface{}) pbxparser.IterateActionType {
			uuids[key] = struct{}{}
			return pbxparser.IterateActionContinue
		}, pbxparser.NonCommentsFilter)
		return pbxparser.IterateActionContinue
	})
	p.uuids = uuids
}

func (p *PbxProject) generateUuid() (string, error) {
	for {
		u, err := uuid.NewV4()
		if err != nil {
			return "", fmt.Errorf("generate object id: %w", err)
		}
		newUUID := strings.ToUpper(strings.ReplaceAll(u.String(), "-", "")[0:24])
		if _, found := p.uuids[newUUID]; !found {
			p.uuids[newUUID] = struct{}{}
			return newUUID, nil
		}
	}
}

// section returns the object section for isa, creating it when create is set.
func (p *PbxProject) section(isa string, create bool) pbxparser.Object {
	if !p.pbxObjectSection.Has(isa) && create {
		p.pbxObjectSection.Set(isa, pbxparser.NewObject())
	}
	return p.pbxObjectSection.GetObject(isa)
}

// FileReferences returns the ids of every PBXFileReference whose path and
// sourceTree match, compared without quotes.
func (p *PbxProject) FileReferences(filePath, sourceTree string) []string {
	if !p.parsed() {
		return nil
	}
	var refs []string
	p.section("PBXFileReference", false).ForeachWithFilter(func(key string, val interface{}) pbxparser.IterateActionType {
		ref, ok := val.(pbxparser.Object)
		if !ok {
			return pbxparser.IterateActionContinue
		}
		if unquoted(ref.GetString("path")) == filePath && unquoted(ref.GetString("sourceTree")) == unquoted(sourceTree) {
			refs = append(refs, key)
		}
		return pbxparser.IterateActionContinue
	}, pbxparser.NonCommentsFilter)
	return refs
}

func (p *PbxProject) HasFile(filePath, sourceTree string) bool {
	return len(p.FileReferences(filePath, sourceTree)) > 0
}

// AddFile references filePath under sourceTree, files it in its group and
// adds a build file to every build phase of the matching kind.
func (p *PbxProject) AddFile(filePath, sourceTree string) error {
	_, err := p.AddFileWithOptions(filePath, PbxFileOptions{SourceTree: sourceTree})
	return err
}

func (p *PbxProject) AddFileWithOptions(filePath string, options PbxFileOptions) (*PbxFile, error) {
	if !p.parsed() {
		return nil, ErrNotParsed
	}
	pbxfile := newPbxFile(filePath, options)

	fileRef, err := p.generateUuid()
	if err != nil {
		return nil, err
	}
	pbxfile.FileRef = fileRef
	p.addToPbxFileReferenceSection(pbxfile) // PBXFileReference
	p.addToPbxGroup(pbxfile)                // PBXGroup
	if err := p.addToPbxBuildPhases(pbxfile); err != nil {
		return nil, err
	}

	p.modified = true
	slog.Debug("Added file reference.", "path", pbxfile.Path, "sourceTree", pbxfile.SourceTree, "fileRef", pbxfile.FileRef)
	return pbxfile, nil
}

func (p *PbxProject) addToPbxFileReferenceSection(pbxfile *PbxFile) {
	section := p.section("PBXFileReference", true)
	section.Set(pbxfile.FileRef, newPbxFileReferenceObj(pbxfile))
	section.Set(pbxparser.CommentKey(pbxfile.FileRef), pbxfile.Basename)
}

func (p *PbxProject) addToPbxBuildFileSection(pbxfile *PbxFile, phaseName string) {
	section := p.section("PBXBuildFile", true)
	section.Set(pbxfile.Uuid, pbxBuildFileObj(pbxfile))
	section.Set(pbxparser.CommentKey(pbxfile.Uuid), longComment(pbxfile, phaseName))
}

// The file goes in the group named after its kind, or the main group when the
// project has none.
func (p *PbxProject) addToPbxGroup(pbxfile *PbxFile) {
	group := p.pbxGroupByName(pbxfile.Group)
	if group.IsEmpty() {
		group = p.mainGroup()
	}
	if group.IsEmpty() {
		slog.Debug("No group to hold file reference.", "path", pbxfile.Path)
		return
	}
	addToObjectList(group, "children", pbxGroupChild(pbxfile))
}

func (p *PbxProject) addToPbxBuildPhases(pbxfile *PbxFile) error {
	isa := pbxfile.buildPhaseIsa()
	if isa == "" {
		return nil
	}
	section := p.section(isa, false)

	var phases []pbxparser.ObjectWithUUID
	section.ForeachWithFilter(func(key string, val interface{}) pbxparser.IterateActionType {
		if phase, ok := val.(pbxparser.Object); ok {
			phases = append(phases, pbxparser.ObjectWithUUID{Object: phase, UUID: key})
		}
		return pbxparser.IterateActionContinue
	}, pbxparser.NonCommentsFilter)

	for _, phase := range phases {
		buildFile := *pbxfile
		buildUuid, err := p.generateUuid()
		if err != nil {
			return err
		}
		buildFile.Uuid = buildUuid
		phaseName := section.Comment(phase.UUID)
		if phaseName == "" {
			phaseName = pbxfile.Group
		}
		p.addToPbxBuildFileSection(&buildFile, phaseName) // PBXBuildFile
		addToObjectList(phase.Object, "files", pbxBuildPhaseObj(&buildFile, phaseName))
	}
	return nil
}

func (p *PbxProject) pbxGroupByName(name string) (obj pbxparser.Object) {
	obj = pbxparser.NewObject()
	section := p.section("PBXGroup", false)
	section.ForeachWithFilter(func(key string, value interface{}) pbxparser.IterateActionType {
		group, ok := value.(pbxparser.Object)
		if !ok {
			return pbxparser.IterateActionContinue
		}
		if section.Comment(key) == name || unquoted(group.GetString("name")) == name {
			obj = group
			return pbxparser.IterateActionBreak
		}
		return pbxparser.IterateActionContinue
	}, pbxparser.NonCommentsFilter)
	return
}

func (p *PbxProject) getFirstProject() pbxparser.ObjectWithUUID {
	var first pbxparser.ObjectWithUUID
	p.section("PBXProject", false).ForeachWithFilter(func(key string, val interface{}) pbxparser.IterateActionType {
		if project, ok := val.(pbxparser.Object); ok {
			first = pbxparser.ObjectWithUUID{Object: project, UUID: key}
			return pbxparser.IterateActionBreak
		}
		return pbxparser.IterateActionContinue
	}, pbxparser.NonCommentsFilter)
	return first
}

func (p *PbxProject) mainGroup() pbxparser.Object {
	project := p.getFirstProject()
	if project.SliceMap == nil {
		return pbxparser.NewObject()
	}
	return p.section("PBXGroup", false).GetObject(project.GetString("mainGroup"))
}

// Save writes the project to filePath, or back to the file it was parsed from
// when filePath is empty.
func (p *PbxProject) Save(filePath string) error {
	if !p.parsed() {
		return ErrNotParsed
	}
	if filePath == "" {
		filePath = p.filePath
	}
	if err := NewPbxWriter(p, WithOmitEmpty()).Write(filePath); err != nil {
		return fmt.Errorf("save project %s: %w", filePath, err)
	}
	slog.Debug("Saved project.", "path", filePath)
	return nil
}

func BackupPath(filePath string, now time.Time) string {
	return fmt.Sprintf("%s_%s.backup", filePath, now.Format(BackupTimeLayout))
}

// Backup copies the project file as it is on disk next to itself and returns
// the copy's path.
func (p *PbxProject) Backup() (string, error) {
	backupPath := BackupPath(p.filePath, time.Now())
	if err := copyFile(p.filePath, backupPath); err != nil {
		return "", fmt.Errorf("backup project %s: %w", p.filePath, err)
	}
	slog.Debug("Backed up project.", "path", p.filePath, "backup", backupPath)
	return backupPath, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// helper object creation functions
func pbxBuildFileObj(pbxfile *PbxFile) pbxparser.Object {
	return pbxparser.NewObjectWithData([]pbxparser.ObjectItem{
		pbxparser.NewObjectItem("isa", "PBXBuildFile"),
		pbxparser.NewObjectItem("fileRef", pbxfile.FileRef),
		pbxparser.NewObjectItem(pbxparser.CommentKey("fileRef"), pbxfile.Basename),
	})
}

func newPbxFileReferenceObj(pbxfile *PbxFile) pbxparser.Object {
	obj := pbxparser.NewObject()
	obj.Set("isa", "PBXFileReference")
	if pbxfile.FileEncoding != 0 {
		obj.Set("fileEncoding", pbxfile.FileEncoding)
	}
	obj.Set("lastKnownFileType", quoted(pbxfile.LastKnownFileType))
	obj.Set("name", quoted(pbxfile.Basename))
	obj.Set("path", quoted(pbxfile.Path))
	obj.Set("sourceTree", quoted(pbxfile.SourceTree))
	return obj
}

func pbxGroupChild(pbxfile *PbxFile) pbxparser.Object {
	return pbxparser.NewCommentValue(pbxfile.FileRef, pbxfile.Basename)
}

func pbxBuildPhaseObj(pbxfile *PbxFile, phaseName string) pbxparser.Object {
	return pbxparser.NewCommentValue(pbxfile.Uuid, longComment(pbxfile, phaseName))
}

func longComment(pbxfile *PbxFile, phaseName string) string {
	return fmt.Sprintf("%s in %s", pbxfile.Basename, phaseName)
}
