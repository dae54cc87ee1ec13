/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package logutil formats the one-line operation logs shared by the document packages.
package logutil

import (
	"fmt"
	"strings"

	"github.com/hyperledger/aries-framework-go/component/log"
)

// LogError logs a failed step of an operation.
func LogError(logger *log.Log, command, action, errMsg string, data ...string) {
	logger.Errorf("command=[%s] action=[%s] %s errMsg=[%s]", command, action, join(data), errMsg)
}

// LogDebug logs a step of an operation at debug level.
func LogDebug(logger *log.Log, command, action, msg string, data ...string) {
	logger.Debugf("command=[%s] action=[%s] %s msg=[%s]", command, action, join(data), msg)
}

// LogInfo logs a step of an operation at info level.
func LogInfo(logger *log.Log, command, action, msg string, data ...string) {
	logger.Infof("command=[%s] action=[%s] %s msg=[%s]", command, action, join(data), msg)
}

// CreateKeyValueString creates a concatenated string.
func CreateKeyValueString(key string, val interface{}) string {
	return fmt.Sprintf("%s=[%v]", key, val)
}

func join(data []string) string {
	return strings.Join(data, " ")
}
