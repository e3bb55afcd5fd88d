/*
Copyright (c) YugabyteDB, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/yugabyte/dump-anonymizer/src/config"
)

type MyFormatter struct{}

var levelList = []string{
	"PANIC",
	"FATAL",
	"ERROR",
	"WARN",
	"INFO",
	"DEBUG",
	"TRACE",
}

func (mf *MyFormatter) Format(entry *log.Entry) ([]byte, error) {
	level := levelList[int(entry.Level)]
	location := ""
	if entry.Caller != nil {
		location = fmt.Sprintf("%s:%d ", filepath.Base(entry.Caller.File), entry.Caller.Line)
	}
	// Example log line:
	// 2024-06-15 12:16:42 INFO engine.go:96 transformer seed set to 42
	msg := fmt.Sprintf("%s %s %s%s\n",
		entry.Time.Format("2006-01-02 15:04:05"), level, location, entry.Message)
	return []byte(msg), nil
}

func InitLogging(dir string, disableLogging bool, cmdName string) {
	if disableLogging {
		log.SetOutput(io.Discard)
		return
	}
	if dir == "" {
		dir = "."
	}
	logFileName := filepath.Join(dir, "logs", fmt.Sprintf("dump-anonymizer-%s.log", cmdName))

	// logRotator creates the "logs" folder and the log file when they do not exist.
	logRotator := &lumberjack.Logger{
		Filename:   logFileName,
		MaxSize:    200, // 200 MB log size before rotation
		MaxBackups: 10,  // Allow upto 10 logs at once before deleting oldest logs.
	}
	log.SetOutput(logRotator)

	level, err := log.ParseLevel(config.LogLevel)
	if err == nil {
		log.SetLevel(level)
	}
	log.SetReportCaller(true)
	log.SetFormatter(&MyFormatter{})
	log.Info("Logging initialised.")
	log.Infof("Args: %v", os.Args)
	log.Infof("\n%s", getVersionInfo())
}
