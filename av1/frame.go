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
)

// TemplateIndex maps a frame's template id to its position in a template table
// starting at offset. Both live in the 6 bits id space.
func TemplateIndex(templateID, offset uint8) uint8 {
	return (templateID + MaxTemplates - offset%MaxTemplates) % MaxTemplates
}

// FrameTemplate resolves the template this frame uses. The structure normally
// arrives in an earlier packet; pass nil to use the one carried by v.
//
// Custom DTIs, fdiffs or chains would override the template per frame, which is
// not decoded, so such frames are rejected with ErrUnsupported.
func (v *DependencyDescriptor) FrameTemplate(structure *TemplateStructure) (uint, FrameDependencyTemplate, error) {
	if structure == nil {
		structure = v.Structure
	}
	if structure == nil {
		return 0, FrameDependencyTemplate{}, errors.Wrapf(ErrNoStructure, "frame %v", v.FrameNumber)
	}

	if v.CustomDTIs {
		return 0, FrameDependencyTemplate{}, errors.Wrapf(ErrUnsupported, "frame %v custom_dtis_flag", v.FrameNumber)
	}
	if v.CustomFdiffs {
		return 0, FrameDependencyTemplate{}, errors.Wrapf(ErrUnsupported, "frame %v custom_fdiffs_flag", v.FrameNumber)
	}
	if v.CustomChains {
		return 0, FrameDependencyTemplate{}, errors.Wrapf(ErrUnsupported, "frame %v custom_chains_flag", v.FrameNumber)
	}

	index := TemplateIndex(v.TemplateID, structure.TemplateIDOffset)
	if int(index) >= structure.TemplateCnt {
		return 0, FrameDependencyTemplate{}, errors.Wrapf(ErrMalformed, "frame %v template index %v of %v",
			v.FrameNumber, index, structure.TemplateCnt)
	}

	id := uint(structure.TemplateIDOffset) + uint(index)
	t, ok := structure.Template(id)
	if !ok {
		return 0, FrameDependencyTemplate{}, errors.Wrapf(ErrMalformed, "frame %v no template %v", v.FrameNumber, id)
	}
	return id, t, nil
}
