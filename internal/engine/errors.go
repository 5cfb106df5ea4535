package engine

import (
	"fmt"

	"github.com/dotsoulja/aqualens/internal/aqerrors"
	"github.com/dotsoulja/aqualens/internal/stages"
)

func unknownParamError(id stages.StageID, name string) error {
	return aqerrors.NewStage(aqerrors.InvalidParameter, "engine.SetParam", string(id),
		fmt.Errorf("unknown parameter %q", name))
}

func invalidParamError(id stages.StageID, name string, err error) error {
	return aqerrors.NewStage(aqerrors.InvalidParameter, "engine.SetParam", string(id),
		fmt.Errorf("parameter %q: %w", name, err))
}
