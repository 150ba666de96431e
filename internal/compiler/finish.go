package compiler

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/plugdef/internal/config"
	"github.com/vk/plugdef/internal/ctxlog"
	"github.com/vk/plugdef/internal/grammar"
)

// finishPass compiles the finish program. Only custom_finish contributes;
// every other key, known or not, is skipped.
func (c *Compiler) finishPass(ctx context.Context, res *resolver, def *config.Definition) ([]instruction, hcl.Diagnostics) {
	var program []instruction
	var diags hcl.Diagnostics
	for _, entry := range def.Entries {
		if entry.Key != grammar.CustomFinish {
			continue
		}
		ins, entryDiags := hookInstruction(res, entry)
		diags = append(diags, entryDiags...)
		program = append(program, ins...)
	}
	ctxlog.FromContext(ctx).Debug("Finish pass complete.", "instructions", len(program))
	return program, diags
}
