package toolkit

import (
	"bytes"
	"log"
	"os"
)

// blocksProbeHeader is the system header probed for the legacy __BLOCKS__
// macro. The macro collides with a construct used inside the toolkit headers,
// so when present it is undefined for the binding-generation step.
const blocksProbeHeader = "/usr/include/stdlib.h"

func applyBlocksWorkaround(cfg *BuildConfig, header string, logger *log.Logger) {
	data, err := os.ReadFile(header)
	if err != nil {
		// No probe target, no workaround needed.
		return
	}
	if !bytes.Contains(data, []byte("__BLOCKS__")) {
		return
	}
	logger.Printf("%s defines __BLOCKS__; adding -U__BLOCKS__ to the preprocessing options", header)
	cfg.CPPOptions = append(cfg.CPPOptions, "-U__BLOCKS__")
}
