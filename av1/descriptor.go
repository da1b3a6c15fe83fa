// The MIT License (MIT)
//
// Copyright (c) 2021 srs-bench(ossrs)
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

// Package av1 decodes the AV1 Dependency Descriptor RTP header extension.
//
// See https://aomediacodec.github.io/av1-rtp-spec/#dependency-descriptor-rtp-header-extension
package av1

import (
	"fmt"
	"github.com/PrincetonUniversity/Domino-IMC/bits"
	"github.com/ossrs/go-oryx-lib/errors"
	"strings"
)

// MandatoryFieldsLength is the size in bytes of the fields every descriptor carries.
const MandatoryFieldsLength = 3

// MaxTemplates is the size of the 6 bits template id space.
const MaxTemplates = 64

var (
	// ErrTooShort means the payload is under MandatoryFieldsLength bytes.
	ErrTooShort = errors.New("av1: descriptor too short")
	// ErrOutOfRange means a field would be read past the end of the payload.
	ErrOutOfRange = bits.ErrOutOfRange
	// ErrUnsupported means a per-frame decode met a custom dtis, fdiffs or chains flag.
	ErrUnsupported = errors.New("av1: unsupported")
	// ErrMalformed means the payload decodes to an impossible structure.
	ErrMalformed = errors.New("av1: malformed descriptor")
	// ErrNoStructure means a per-frame decode has no template structure to resolve against.
	ErrNoStructure = errors.New("av1: no template dependency structure")
)

// MandatoryFields are the first 3 bytes of every descriptor.
type MandatoryFields struct {
	StartOfFrame bool
	EndOfFrame   bool
	// The frame_dependency_template_id, 6 bits.
	TemplateID  uint8
	FrameNumber uint16
}

// ParseMandatoryFields decodes the fixed prefix of a descriptor.
func ParseMandatoryFields(b []byte) (MandatoryFields, error) {
	if len(b) < MandatoryFieldsLength {
		return MandatoryFields{}, errors.Wrapf(ErrTooShort, "%v bytes", len(b))
	}

	return MandatoryFields{
		StartOfFrame: b[0]&0x80 != 0,
		EndOfFrame:   b[0]&0x40 != 0,
		TemplateID:   b[0] & 0x3f,
		FrameNumber:  uint16(b[1])<<8 | uint16(b[2]),
	}, nil
}

// ExtendedFields are the flags present when the descriptor is longer than 3 bytes.
type ExtendedFields struct {
	TemplateDependencyStructurePresent bool
	ActiveDecodeTargetsPresent         bool
	CustomDTIs                         bool
	CustomFdiffs                       bool
	CustomChains                       bool
}

// HasCustom is true when any per-frame custom flag is set.
func (v ExtendedFields) HasCustom() bool {
	return v.CustomDTIs || v.CustomFdiffs || v.CustomChains
}

// DependencyDescriptor is a decoded descriptor, read only after Parse.
type DependencyDescriptor struct {
	MandatoryFields
	ExtendedFields

	// All decode targets are active when a structure is present, (1<<DtCnt)-1.
	ActiveDecodeTargetsBitmask uint32

	// Nil unless TemplateDependencyStructurePresent.
	Structure *TemplateStructure
}

// Parse decodes a descriptor from the RTP header extension payload b. It keeps no
// reference to b. On error no descriptor is returned.
func Parse(b []byte) (*DependencyDescriptor, error) {
	mandatory, err := ParseMandatoryFields(b)
	if err != nil {
		return nil, err
	}

	v := &DependencyDescriptor{MandatoryFields: mandatory}
	if len(b) == MandatoryFieldsLength {
		return v, nil
	}

	c := bits.NewCursor(b)
	if err := c.Skip(MandatoryFieldsLength * 8); err != nil {
		return nil, errors.Wrapf(err, "skip mandatory fields")
	}

	if err := v.parseExtendedFields(c); err != nil {
		return nil, errors.Wrapf(err, "frame %v", v.FrameNumber)
	}

	return v, nil
}

func (v *DependencyDescriptor) parseExtendedFields(c *bits.Cursor) error {
	flags := []struct {
		name string
		dst  *bool
	}{
		{"template_dependency_structure_present_flag", &v.TemplateDependencyStructurePresent},
		{"active_decode_targets_present_flag", &v.ActiveDecodeTargetsPresent},
		{"custom_dtis_flag", &v.CustomDTIs},
		{"custom_fdiffs_flag", &v.CustomFdiffs},
		{"custom_chains_flag", &v.CustomChains},
	}
	for _, flag := range flags {
		r, err := c.ReadBool()
		if err != nil {
			return errors.Wrapf(err, "read %v", flag.name)
		}
		*flag.dst = r
	}

	if !v.TemplateDependencyStructurePresent {
		return nil
	}

	structure, err := parseTemplateStructure(c)
	if err != nil {
		return errors.Wrapf(err, "template dependency structure")
	}

	v.Structure = structure
	v.ActiveDecodeTargetsBitmask = uint32(uint64(1)<<uint(structure.DtCnt) - 1)
	return nil
}

// HasTemplateStructure is true when the descriptor carries a template table.
func (v *DependencyDescriptor) HasTemplateStructure() bool {
	return v.Structure != nil
}

func (v *DependencyDescriptor) String() string {
	var sb strings.Builder
	if v.StartOfFrame {
		sb.WriteString("start, ")
	}
	if v.EndOfFrame {
		sb.WriteString("end, ")
	}
	sb.WriteString(fmt.Sprintf("tpl_id=%v, frame_num=%v", v.TemplateID, v.FrameNumber))
	if v.Structure != nil {
		sb.WriteString(fmt.Sprintf(", tpl_offset=%v, dt_cnt=%v, tpl_cnt=%v",
			v.Structure.TemplateIDOffset, v.Structure.DtCnt, v.Structure.TemplateCnt))
	}
	return sb.String()
}
