// Copyright 2025 Radio Room Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// logger is the process-wide structured logger. The console owns the
// terminal, so log output goes to a file, never stdout.
var logger *zap.SugaredLogger

func init() {
	// Safe no-op until initLogger runs, so early code paths can log
	// without a nil check.
	logger = zap.NewNop().Sugar()
}

// initLogger opens the log file from config and installs the global logger.
// Failure is non-fatal: the console still runs, it just runs quiet.
func initLogger(cfg LoggingConfig) error {
	path := expandHome(cfg.File)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	level := zap.InfoLevel
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zap.InfoLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(f),
		level,
	)
	logger = zap.New(core).Sugar()
	return nil
}

func syncLogger() {
	_ = logger.Sync()
}
