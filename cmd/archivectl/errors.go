package main

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
)

var errNotRunning = errors.New("archived is not running")

// describe turns RPC failures into messages for a terminal user.
func describe(profileName string, err error) error {
	if err == nil {
		return nil
	}
	st, ok := grpcstatus.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Unavailable:
		return fmt.Errorf("%w for profile %q; start it with: archived --profile %s", errNotRunning, profileName, profileName)
	case codes.NotFound, codes.InvalidArgument, codes.PermissionDenied, codes.FailedPrecondition:
		return errors.New(st.Message())
	}
	return err
}
