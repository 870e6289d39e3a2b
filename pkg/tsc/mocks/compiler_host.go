package mocks

import (
	tsc "github.com/stackb/memcompile/pkg/tsc"
	mock "github.com/stretchr/testify/mock"
)

// CompilerHost is a mock type for the tsc.CompilerHost type
type CompilerHost struct {
	mock.Mock
}

// DirectoryExists provides a mock function with given fields: directoryName
func (_m *CompilerHost) DirectoryExists(directoryName string) bool {
	ret := _m.Called(directoryName)
	return ret.Bool(0)
}

// FileExists provides a mock function with given fields: fileName
func (_m *CompilerHost) FileExists(fileName string) bool {
	ret := _m.Called(fileName)
	return ret.Bool(0)
}

// GetCanonicalFileName provides a mock function with given fields: fileName
func (_m *CompilerHost) GetCanonicalFileName(fileName string) string {
	ret := _m.Called(fileName)
	return ret.String(0)
}

// GetCurrentDirectory provides a mock function with given fields:
func (_m *CompilerHost) GetCurrentDirectory() string {
	ret := _m.Called()
	return ret.String(0)
}

// GetDefaultLibFileName provides a mock function with given fields: options
func (_m *CompilerHost) GetDefaultLibFileName(options tsc.CompilerOptions) string {
	ret := _m.Called(options)
	return ret.String(0)
}

// GetDirectories provides a mock function with given fields: path
func (_m *CompilerHost) GetDirectories(path string) []string {
	ret := _m.Called(path)

	var r0 []string
	if rf, ok := ret.Get(0).(func(string) []string); ok {
		r0 = rf(path)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]string)
	}
	return r0
}

// GetNewLine provides a mock function with given fields:
func (_m *CompilerHost) GetNewLine() string {
	ret := _m.Called()
	return ret.String(0)
}

// GetSourceFile provides a mock function with given fields: fileName, languageVersion
func (_m *CompilerHost) GetSourceFile(fileName string, languageVersion tsc.ScriptTarget) *tsc.SourceFile {
	ret := _m.Called(fileName, languageVersion)

	var r0 *tsc.SourceFile
	if rf, ok := ret.Get(0).(func(string, tsc.ScriptTarget) *tsc.SourceFile); ok {
		r0 = rf(fileName, languageVersion)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*tsc.SourceFile)
	}
	return r0
}

// ReadFile provides a mock function with given fields: fileName
func (_m *CompilerHost) ReadFile(fileName string) (string, bool) {
	ret := _m.Called(fileName)
	return ret.String(0), ret.Bool(1)
}

// UseCaseSensitiveFileNames provides a mock function with given fields:
func (_m *CompilerHost) UseCaseSensitiveFileNames() bool {
	ret := _m.Called()
	return ret.Bool(0)
}

// WriteFile provides a mock function with given fields: fileName, data, writeByteOrderMark
func (_m *CompilerHost) WriteFile(fileName string, data string, writeByteOrderMark bool) error {
	ret := _m.Called(fileName, data, writeByteOrderMark)
	return ret.Error(0)
}

type mockConstructorTestingTNewCompilerHost interface {
	mock.TestingT
	Cleanup(func())
}

// NewCompilerHost creates a new instance of CompilerHost. It also registers a
// testing interface on the mock and a cleanup function to assert the mocks
// expectations.
func NewCompilerHost(t mockConstructorTestingTNewCompilerHost) *CompilerHost {
	m := &CompilerHost{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
