package store

import (
	"github.com/roach88/teachsync/internal/model"
)

// assignOwner makes instID the only owner of moduleID on both sides: the
// module's instructor_id and exactly one instructor module list.
func assignOwner(doc *model.Document, moduleID, instID string) {
	doc.Instructors.Each(func(id string, inst *model.Instructor) {
		if id != instID {
			inst.Modules = without(inst.Modules, moduleID)
		}
	})
	if inst, ok := doc.Instructors.Get(instID); ok && !inst.HasModule(moduleID) {
		inst.Modules = append(inst.Modules, moduleID)
	}
	if m, ok := doc.Modules.Get(moduleID); ok {
		m.InstructorID = instID
	}
}

// releaseOwner removes every ownership link to moduleID.
func releaseOwner(doc *model.Document, moduleID string) {
	doc.Instructors.Each(func(_ string, inst *model.Instructor) {
		inst.Modules = without(inst.Modules, moduleID)
	})
	if m, ok := doc.Modules.Get(moduleID); ok {
		m.InstructorID = ""
	}
}

// releaseFrom drops moduleID from instID's list and clears the module's
// owner only when it pointed at instID.
func releaseFrom(doc *model.Document, moduleID, instID string) {
	if inst, ok := doc.Instructors.Get(instID); ok {
		inst.Modules = without(inst.Modules, moduleID)
	}
	if m, ok := doc.Modules.Get(moduleID); ok && m.InstructorID == instID {
		m.InstructorID = ""
	}
}

// reconcileOwnership rewrites both ownership sides of an imported document.
//
// A module's instructor_id wins. A module without one is claimed by the
// first instructor listing it. Instructor lists keep their order, lose ids
// of missing modules and of modules owned elsewhere, and gain owned modules
// at the end. Returned notes describe every repair.
func reconcileOwnership(doc *model.Document) []string {
	var notes []string

	owners := map[string]string{}
	for _, modID := range doc.Modules.Keys() {
		m, _ := doc.Modules.Get(modID)
		switch {
		case m.InstructorID != "" && doc.Instructors.Has(m.InstructorID):
			owners[modID] = m.InstructorID
		case m.InstructorID != "":
			notes = append(notes, "module "+modID+": owner "+m.InstructorID+" does not exist, cleared")
			m.InstructorID = ""
			fallthrough
		default:
			if id, ok := doc.ModuleOwner(modID); ok {
				owners[modID] = id
				m.InstructorID = id
				notes = append(notes, "module "+modID+": owner set to "+id+" from instructor list")
			}
		}
	}

	doc.Instructors.Each(func(id string, inst *model.Instructor) {
		kept := make([]string, 0, len(inst.Modules))
		for _, modID := range inst.Modules {
			switch owner, ok := owners[modID]; {
			case !doc.Modules.Has(modID):
				notes = append(notes, "instructor "+id+": dropped unknown module "+modID)
			case ok && owner != id:
				notes = append(notes, "instructor "+id+": dropped "+modID+" owned by "+owner)
			default:
				kept = append(kept, modID)
			}
		}
		inst.Modules = kept
	})

	for _, modID := range doc.Modules.Keys() {
		owner, ok := owners[modID]
		if !ok {
			continue
		}
		inst, _ := doc.Instructors.Get(owner)
		if !inst.HasModule(modID) {
			inst.Modules = append(inst.Modules, modID)
			notes = append(notes, "instructor "+owner+": added owned module "+modID)
		}
	}
	return notes
}

// without returns list minus id. Never returns nil.
func without(list []string, id string) []string {
	out := make([]string, 0, len(list))
	for _, it := range list {
		if it != id {
			out = append(out, it)
		}
	}
	return out
}
