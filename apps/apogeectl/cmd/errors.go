package cmd

import (
	"log"

	sdkerrors "github.com/apogeehq/apogee/pkg/asdk/aerr"
)

// exitIfSdkError inspects errors returned from the SDK and emits
// user-friendly guidance before exiting. Non-SDK errors fall back to
// log.Fatalf.
func exitIfSdkError(err error) {
	if err == nil {
		return
	}
	switch {
	case sdkerrors.IsCode(err, sdkerrors.CodeUnauthorized):
		log.Fatalf("authentication required: run 'apogeectl auth login' (%v)", err)
	case sdkerrors.IsCode(err, sdkerrors.CodeAuthFailed):
		log.Fatalf("sign-in failed: run 'apogeectl auth login' again (%v)", err)
	case sdkerrors.IsCode(err, sdkerrors.CodeAuthTimeout):
		log.Fatalf("sign-in timed out waiting for the browser (%v)", err)
	case sdkerrors.IsCode(err, sdkerrors.CodeNoFreePort):
		log.Fatalf("all login callback ports are busy; close the conflicting process or change auth.callbackPorts (%v)", err)
	case sdkerrors.IsCode(err, sdkerrors.CodeNotFound):
		log.Fatalf("not found: %v", err)
	case sdkerrors.IsCode(err, sdkerrors.CodeValidation):
		log.Fatalf("request rejected: %v", err)
	default:
		log.Fatalf("%v", err)
	}
}
