//go:build unit

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
package lockfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockAndUnlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".dump-anonymizer.lck")
	l := NewLockfile(path)
	assert.False(t, l.IsLocked())

	l.Lock()
	assert.True(t, l.IsLocked())
	assert.FileExists(t, path)

	reader := NewLockfile(path)
	pid, err := reader.GetCmdPID()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
	assert.True(t, reader.IsPIDActive())

	l.Unlock()
	assert.False(t, l.IsLocked())
	assert.NoFileExists(t, path)

	// a second unlock is a no-op
	l.Unlock()
}

func TestCorruptLockfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".dump-anonymizer.lck")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid\n"), 0644))

	l := NewLockfile(path)
	_, err := l.GetCmdPID()
	assert.ErrorContains(t, err, "failed to parse PID")
	assert.False(t, l.IsPIDActive())

	_, err = NewLockfile(filepath.Join(t.TempDir(), "missing.lck")).GetCmdPID()
	assert.ErrorIs(t, err, os.ErrNotExist)
}
