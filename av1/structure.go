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
	"fmt"
	"github.com/PrincetonUniversity/Domino-IMC/bits"
	"github.com/ossrs/go-oryx-lib/errors"
	"sort"
	"strings"
)

// The next_layer_idc values of the template layer table.
const (
	layerIdcSame = iota
	layerIdcNextTemporal
	layerIdcNextSpatial
	layerIdcNoMore
)

// FrameDependencyTemplate is one row of the template table.
type FrameDependencyTemplate struct {
	SpatialLayerID  uint
	TemporalLayerID uint
	// One indication per decode target, DtCnt in total.
	DTIs []DTI
	// Frame diffs, each at least 1.
	Fdiffs []uint
}

func (v FrameDependencyTemplate) String() string {
	dtis := make([]string, 0, len(v.DTIs))
	for _, dti := range v.DTIs {
		dtis = append(dtis, dti.String())
	}
	return fmt.Sprintf("spatial_layer_id=%v, temporal_layer_id=%v, dtis=[%v], fdiffs=%v",
		v.SpatialLayerID, v.TemporalLayerID, strings.Join(dtis, " "), v.Fdiffs)
}

// TemplateStructure is the template_dependency_structure of a descriptor.
type TemplateStructure struct {
	TemplateIDOffset uint8
	// Number of decode targets, in [1, 32].
	DtCnt       int
	TemplateCnt int

	MaxSpatialID  uint
	MaxTemporalID uint

	// Keyed by TemplateIDOffset plus the position in the table.
	templates map[uint]FrameDependencyTemplate
}

// Template returns the template with absolute id.
func (v *TemplateStructure) Template(id uint) (FrameDependencyTemplate, bool) {
	t, ok := v.templates[id]
	return t, ok
}

// Templates returns a copy of the id to template mapping.
func (v *TemplateStructure) Templates() map[uint]FrameDependencyTemplate {
	r := make(map[uint]FrameDependencyTemplate, len(v.templates))
	for id, t := range v.templates {
		r[id] = t
	}
	return r
}

// TemplateIDs returns the template ids in ascending order.
func (v *TemplateStructure) TemplateIDs() []uint {
	ids := make([]uint, 0, len(v.templates))
	for id := range v.templates {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i] < ids[j]
	})
	return ids
}

// templateLayer is an entry of the identity table, built before the DTI and fdiff
// passes which need the template count.
type templateLayer struct {
	spatialID  uint
	temporalID uint
}

func parseTemplateStructure(c *bits.Cursor) (*TemplateStructure, error) {
	offset, err := c.ReadBits(6)
	if err != nil {
		return nil, errors.Wrapf(err, "read template_id_offset")
	}

	dtCntMinusOne, err := c.ReadBits(5)
	if err != nil {
		return nil, errors.Wrapf(err, "read dt_cnt_minus_one")
	}

	v := &TemplateStructure{
		TemplateIDOffset: uint8(offset),
		DtCnt:            int(dtCntMinusOne) + 1,
	}

	layers, err := v.parseLayers(c)
	if err != nil {
		return nil, errors.Wrapf(err, "template layers")
	}
	v.TemplateCnt = len(layers)

	dtis, err := v.parseDTIs(c)
	if err != nil {
		return nil, errors.Wrapf(err, "template dtis")
	}

	fdiffs, err := v.parseFdiffs(c)
	if err != nil {
		return nil, errors.Wrapf(err, "template fdiffs")
	}

	v.templates = make(map[uint]FrameDependencyTemplate, len(layers))
	for i, layer := range layers {
		v.templates[uint(v.TemplateIDOffset)+uint(i)] = FrameDependencyTemplate{
			SpatialLayerID:  layer.spatialID,
			TemporalLayerID: layer.temporalID,
			DTIs:            dtis[i],
			Fdiffs:          fdiffs[i],
		}
	}

	return v, nil
}

// parseLayers reads next_layer_idc until it is 3. Each template is recorded with
// the current layer ids before its idc is read, so the terminating template counts.
func (v *TemplateStructure) parseLayers(c *bits.Cursor) ([]templateLayer, error) {
	var layers []templateLayer
	var spatialID, temporalID uint

	for {
		// Template ids are 6 bits, a table never holds more than 64.
		if len(layers) >= MaxTemplates {
			return nil, errors.Wrapf(ErrMalformed, "over %v templates", MaxTemplates)
		}
		layers = append(layers, templateLayer{spatialID: spatialID, temporalID: temporalID})

		idc, err := c.ReadBits(2)
		if err != nil {
			return nil, errors.Wrapf(err, "read next_layer_idc of template %v", len(layers)-1)
		}

		switch idc {
		case layerIdcNextTemporal:
			temporalID++
			if temporalID > v.MaxTemporalID {
				v.MaxTemporalID = temporalID
			}
		case layerIdcNextSpatial:
			temporalID = 0
			spatialID++
		}

		if idc == layerIdcNoMore {
			break
		}
	}

	v.MaxSpatialID = spatialID
	return layers, nil
}

// parseDTIs reads the TemplateCnt x DtCnt matrix of 2 bits indications, row major.
func (v *TemplateStructure) parseDTIs(c *bits.Cursor) ([][]DTI, error) {
	r := make([][]DTI, v.TemplateCnt)

	for i := 0; i < v.TemplateCnt; i++ {
		r[i] = make([]DTI, v.DtCnt)
		for j := 0; j < v.DtCnt; j++ {
			dti, err := c.ReadBits(2)
			if err != nil {
				return nil, errors.Wrapf(err, "read dti %v of template %v", j, i)
			}
			r[i][j] = DTI(dti)
		}
	}

	return r, nil
}

// parseFdiffs reads the fdiff_follows_flag terminated frame diff list of every template.
func (v *TemplateStructure) parseFdiffs(c *bits.Cursor) ([][]uint, error) {
	r := make([][]uint, v.TemplateCnt)

	for i := 0; i < v.TemplateCnt; i++ {
		r[i] = []uint{}
		for {
			follows, err := c.ReadBool()
			if err != nil {
				return nil, errors.Wrapf(err, "read fdiff_follows_flag of template %v", i)
			}
			if !follows {
				break
			}

			fdiffMinusOne, err := c.ReadBits(4)
			if err != nil {
				return nil, errors.Wrapf(err, "read fdiff_minus_one of template %v", i)
			}
			r[i] = append(r[i], uint(fdiffMinusOne)+1)
		}
	}

	return r, nil
}
