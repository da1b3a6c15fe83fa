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
package av1

import (
	"github.com/ossrs/go-oryx-lib/errors"
	"reflect"
	"testing"
)

// bitBuilder packs fields MSB-first, the way a descriptor is laid out on the wire.
type bitBuilder struct {
	data []byte
	n    int
}

func newBitBuilder(mandatory ...byte) *bitBuilder {
	v := &bitBuilder{}
	for _, b := range mandatory {
		v.put(uint32(b), 8)
	}
	return v
}

func (v *bitBuilder) put(value uint32, width int) *bitBuilder {
	for i := width - 1; i >= 0; i-- {
		if v.n/8 >= len(v.data) {
			v.data = append(v.data, 0)
		}
		if (value>>uint(i))&0x01 == 1 {
			v.data[v.n/8] |= 1 << uint(7-v.n%8)
		}
		v.n++
	}
	return v
}

func (v *bitBuilder) flags(structure, activeTargets, dtis, fdiffs, chains bool) *bitBuilder {
	for _, f := range []bool{structure, activeTargets, dtis, fdiffs, chains} {
		if f {
			v.put(1, 1)
		} else {
			v.put(0, 1)
		}
	}
	return v
}

func (v *bitBuilder) bytes() []byte {
	return append([]byte(nil), v.data...)
}

// twoLayerStructure is offset=1, dt_cnt=2 and layer idc [1, 2, 1, 3].
func twoLayerStructure(mandatory ...byte) *bitBuilder {
	b := newBitBuilder(mandatory...).flags(true, false, false, false, false)
	b.put(1, 6).put(1, 5)
	for _, idc := range []uint32{1, 2, 1, 3} {
		b.put(idc, 2)
	}
	for _, dti := range []uint32{3, 2, 1, 0, 3, 3, 2, 1} {
		b.put(dti, 2)
	}
	// template 0: none
	b.put(0, 1)
	// template 1: [1]
	b.put(1, 1).put(0, 4).put(0, 1)
	// template 2: [2, 16]
	b.put(1, 1).put(1, 4).put(1, 1).put(15, 4).put(0, 1)
	// template 3: none
	b.put(0, 1)
	return b
}

func TestParseMandatoryFields(t *testing.T) {
	m, err := ParseMandatoryFields([]byte{0xC5, 0x00, 0x07})
	if err != nil {
		t.Errorf("err %+v", err)
	}
	if want := (MandatoryFields{true, true, 5, 7}); m != want {
		t.Errorf("got %+v, want %+v", m, want)
	}

	m, err = ParseMandatoryFields([]byte{0x7F, 0xFF, 0xFE, 0x00})
	if err != nil {
		t.Errorf("err %+v", err)
	}
	if want := (MandatoryFields{false, true, 63, 0xFFFE}); m != want {
		t.Errorf("got %+v, want %+v", m, want)
	}
}

func TestParseTooShort(t *testing.T) {
	for _, b := range [][]byte{nil, {0x80}, {0x80, 0x00}} {
		if d, err := Parse(b); errors.Cause(err) != ErrTooShort || d != nil {
			t.Errorf("parse %v got %v, err %+v", b, d, err)
		}
	}
}

func TestParseMandatoryOnly(t *testing.T) {
	d, err := Parse([]byte{0x05, 0x00, 0x07})
	if err != nil {
		t.Errorf("err %+v", err)
		return
	}

	if d.StartOfFrame || d.EndOfFrame || d.TemplateID != 5 || d.FrameNumber != 7 {
		t.Errorf("got %+v", d.MandatoryFields)
	}
	if d.HasTemplateStructure() || d.ExtendedFields != (ExtendedFields{}) || d.ActiveDecodeTargetsBitmask != 0 {
		t.Errorf("unexpected extended fields %+v", d)
	}
}

func TestParseExtendedFieldsWithoutStructure(t *testing.T) {
	b := newBitBuilder(0x80, 0x01, 0x00).flags(false, true, false, true, false).put(0, 3)

	d, err := Parse(b.bytes())
	if err != nil {
		t.Errorf("err %+v", err)
		return
	}

	want := ExtendedFields{ActiveDecodeTargetsPresent: true, CustomFdiffs: true}
	if d.ExtendedFields != want {
		t.Errorf("got %+v, want %+v", d.ExtendedFields, want)
	}
	if d.HasTemplateStructure() || d.ActiveDecodeTargetsBitmask != 0 {
		t.Errorf("unexpected structure %+v", d.Structure)
	}
	if !d.HasCustom() {
		t.Errorf("custom flag not reported")
	}
}

func TestParseTemplateStructure(t *testing.T) {
	d, err := Parse(twoLayerStructure(0x81, 0x12, 0x34).bytes())
	if err != nil {
		t.Errorf("err %+v", err)
		return
	}

	if !d.StartOfFrame || d.EndOfFrame || d.TemplateID != 1 || d.FrameNumber != 0x1234 {
		t.Errorf("mandatory %+v", d.MandatoryFields)
	}
	if !d.HasTemplateStructure() {
		t.Errorf("no structure")
		return
	}

	s := d.Structure
	if s.TemplateIDOffset != 1 || s.DtCnt != 2 || s.TemplateCnt != 4 {
		t.Errorf("offset=%v, dt_cnt=%v, tpl_cnt=%v", s.TemplateIDOffset, s.DtCnt, s.TemplateCnt)
	}
	if s.MaxSpatialID != 1 || s.MaxTemporalID != 1 {
		t.Errorf("max spatial=%v, temporal=%v", s.MaxSpatialID, s.MaxTemporalID)
	}
	if d.ActiveDecodeTargetsBitmask != 0x03 {
		t.Errorf("bitmask %#x", d.ActiveDecodeTargetsBitmask)
	}

	want := map[uint]FrameDependencyTemplate{
		1: {0, 0, []DTI{DTIRequired, DTISwitch}, []uint{}},
		2: {0, 1, []DTI{DTIDiscardable, DTINotPresent}, []uint{1}},
		3: {1, 0, []DTI{DTIRequired, DTIRequired}, []uint{2, 16}},
		4: {1, 1, []DTI{DTISwitch, DTIDiscardable}, []uint{}},
	}
	if got := s.Templates(); !reflect.DeepEqual(got, want) {
		t.Errorf("templates got %+v, want %+v", got, want)
	}
	if ids := s.TemplateIDs(); !reflect.DeepEqual(ids, []uint{1, 2, 3, 4}) {
		t.Errorf("ids %v", ids)
	}
}

func TestParseLayerTable(t *testing.T) {
	// Each template is recorded before its idc is consumed.
	b := newBitBuilder(0x00, 0x00, 0x01).flags(true, false, false, false, false)
	b.put(0, 6).put(0, 5)
	for _, idc := range []uint32{0, 1, 2, 3} {
		b.put(idc, 2)
	}
	b.put(0, 2*4) // one dti per template
	b.put(0, 4)   // no fdiffs

	d, err := Parse(b.bytes())
	if err != nil {
		t.Errorf("err %+v", err)
		return
	}

	var got [][2]uint
	for _, id := range d.Structure.TemplateIDs() {
		tpl, _ := d.Structure.Template(id)
		got = append(got, [2]uint{tpl.SpatialLayerID, tpl.TemporalLayerID})
	}
	if want := [][2]uint{{0, 0}, {0, 0}, {0, 1}, {1, 0}}; !reflect.DeepEqual(got, want) {
		t.Errorf("layers got %v, want %v", got, want)
	}
	if d.Structure.MaxSpatialID != 1 || d.Structure.MaxTemporalID != 1 {
		t.Errorf("max %v/%v", d.Structure.MaxSpatialID, d.Structure.MaxTemporalID)
	}
}

func TestParseSingleTemplate(t *testing.T) {
	b := newBitBuilder(0x00, 0x00, 0x01).flags(true, false, false, false, false)
	b.put(5, 6).put(0, 5).put(3, 2).put(2, 2).put(0, 1)

	d, err := Parse(b.bytes())
	if err != nil {
		t.Errorf("err %+v", err)
		return
	}
	if d.Structure.TemplateCnt != 1 || d.Structure.DtCnt != 1 || d.ActiveDecodeTargetsBitmask != 1 {
		t.Errorf("structure %+v", d.Structure)
	}
	if tpl, ok := d.Structure.Template(5); !ok || !reflect.DeepEqual(tpl.DTIs, []DTI{DTISwitch}) {
		t.Errorf("template 5 got %+v", tpl)
	}
}

func TestParseMaxDecodeTargets(t *testing.T) {
	b := newBitBuilder(0x00, 0x00, 0x01).flags(true, false, false, false, false)
	b.put(0, 6).put(31, 5).put(3, 2)
	for i := 0; i < 32; i++ {
		b.put(uint32(i%4), 2)
	}
	b.put(0, 1)

	d, err := Parse(b.bytes())
	if err != nil {
		t.Errorf("err %+v", err)
		return
	}
	if d.Structure.DtCnt != 32 || d.ActiveDecodeTargetsBitmask != 0xFFFFFFFF {
		t.Errorf("dt_cnt=%v, bitmask=%#x", d.Structure.DtCnt, d.ActiveDecodeTargetsBitmask)
	}
	tpl, _ := d.Structure.Template(0)
	if len(tpl.DTIs) != 32 || tpl.DTIs[31] != DTIRequired {
		t.Errorf("dtis %v", tpl.DTIs)
	}
}

func TestParseTruncated(t *testing.T) {
	full := twoLayerStructure(0x81, 0x12, 0x34).bytes()

	// Every truncation past the mandatory fields fails, never returns a partial result.
	for n := 4; n < len(full); n++ {
		d, err := Parse(full[:n])
		if errors.Cause(err) != ErrOutOfRange {
			t.Errorf("truncated to %v bytes got %+v", n, err)
		}
		if d != nil {
			t.Errorf("truncated to %v bytes returned %+v", n, d)
		}
	}
}

func TestParseTruncatedLayerTable(t *testing.T) {
	// The layer table never terminates, the zero padding reads as idc 0.
	b := newBitBuilder(0x00, 0x00, 0x01).flags(true, false, false, false, false)
	b.put(0, 6).put(0, 5).put(0, 2).put(1, 2)

	if _, err := Parse(b.bytes()); errors.Cause(err) != ErrOutOfRange {
		t.Errorf("got %+v", err)
	}
}

func TestParseTooManyTemplates(t *testing.T) {
	data := append([]byte{0x00, 0x00, 0x01, 0x80}, make([]byte, 64)...)
	if _, err := Parse(data); errors.Cause(err) != ErrMalformed {
		t.Errorf("got %+v", err)
	}
}

func TestParseKeepsNoReference(t *testing.T) {
	data := twoLayerStructure(0x81, 0x12, 0x34).bytes()
	d, err := Parse(data)
	if err != nil {
		t.Errorf("err %+v", err)
		return
	}

	for i := range data {
		data[i] = 0xFF
	}
	if d.FrameNumber != 0x1234 || d.Structure.TemplateCnt != 4 {
		t.Errorf("descriptor changed with the buffer: %v", d)
	}
	tpl, _ := d.Structure.Template(3)
	if !reflect.DeepEqual(tpl.Fdiffs, []uint{2, 16}) {
		t.Errorf("fdiffs changed %v", tpl.Fdiffs)
	}
}

func TestTemplatesIsACopy(t *testing.T) {
	d, err := Parse(twoLayerStructure(0x81, 0x12, 0x34).bytes())
	if err != nil {
		t.Errorf("err %+v", err)
		return
	}

	m := d.Structure.Templates()
	delete(m, 1)
	if _, ok := d.Structure.Template(1); !ok {
		t.Errorf("template 1 removed through the copy")
	}
}

func TestDTIString(t *testing.T) {
	for dti, want := range map[DTI]string{
		DTINotPresent:  "not-present",
		DTIDiscardable: "discardable",
		DTISwitch:      "switch",
		DTIRequired:    "required",
		DTI(7):         "unknown",
	} {
		if s := dti.String(); s != want {
			t.Errorf("%d got %v, want %v", dti, s, want)
		}
	}
}

func TestDescriptorString(t *testing.T) {
	d, err := Parse([]byte{0xC5, 0x00, 0x07})
	if err != nil {
		t.Errorf("err %+v", err)
		return
	}
	if s := d.String(); s != "start, end, tpl_id=5, frame_num=7" {
		t.Errorf("got %v", s)
	}
}
