// Package reconcile makes sure a project references a fixed set of SDK
// frameworks and libraries, adding only what is missing.
package reconcile

import (
	"fmt"
)

// SdkRoot is the source tree every dependency is anchored at.
const SdkRoot = "SDKROOT"

type Kind int

const (
	Framework Kind = iota
	Library
)

func (k Kind) String() string {
	switch k {
	case Framework:
		return "framework"
	case Library:
		return "library"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

type Dependency struct {
	Name string
	Kind Kind
}

// Path is the dependency's location relative to the SDK root.
func (d Dependency) Path() string {
	if d.Kind == Library {
		return fmt.Sprintf("usr/lib/%s.dylib", d.Name)
	}
	return fmt.Sprintf("System/Library/Frameworks/%s.framework", d.Name)
}

// Required lists what the Carrot SDK links against, frameworks first.
var Required = []Dependency{
	{Name: "SystemConfiguration", Kind: Framework},
	{Name: "Accounts", Kind: Framework},
	{Name: "Social", Kind: Framework},
	{Name: "AdSupport", Kind: Framework},
	{Name: "libsqlite3", Kind: Library},
}

// Project is the part of a project store the reconciler needs.
type Project interface {
	HasFile(path, tree string) bool
	AddFile(path, tree string) error
}

type Insertion struct {
	Dependency Dependency
	Path       string
	Tree       string
}

// Reconcile adds every dependency not already referenced under SdkRoot and
// returns the insertions made. Frameworks go before libraries, each in table
// order. On error it returns the insertions completed before the failure.
func Reconcile(project Project, deps []Dependency) ([]Insertion, error) {
	var inserted []Insertion
	for _, kind := range []Kind{Framework, Library} {
		for _, dep := range deps {
			if dep.Kind != kind {
				continue
			}
			path := dep.Path()
			if project.HasFile(path, SdkRoot) {
				continue
			}
			if err := project.AddFile(path, SdkRoot); err != nil {
				return inserted, fmt.Errorf("add %s %s: %w", dep.Kind, path, err)
			}
			inserted = append(inserted, Insertion{Dependency: dep, Path: path, Tree: SdkRoot})
		}
	}
	return inserted, nil
}
