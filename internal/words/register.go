package words

import (
	"github.com/rajames440/starforth/internal/blockengine"
	"github.com/rajames440/starforth/internal/dictionary"
)

// InstallCore registers every VMCore-independent word that needs no
// external collaborator: stack shuffling, arithmetic, and EXIT/print/ABORT.
// Callers that also have a BlockEngine should additionally call
// InstallBlockWords, then call Dictionary.SetBootFence once every
// primitive is installed so FORGET can never reach past the boot set
// (spec.md §3.4).
func InstallCore(d *dictionary.Dictionary) {
	InstallStack(d)
	InstallArithmetic(d)
	InstallControl(d)
	gw := &GuardrailWords{Dict: d}
	gw.Install(d)
}

// InstallBlockWords is a convenience wrapper constructing a BlockWords
// bound to eng and installing it on d.
func InstallBlockWords(d *dictionary.Dictionary, eng *blockengine.Engine) *BlockWords {
	bw := &BlockWords{Engine: eng}
	bw.Install(d)
	return bw
}
