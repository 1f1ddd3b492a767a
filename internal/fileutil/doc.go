// Package fileutil expands directory arguments into test source files.
//
// ScanDirectory walks a directory, keeps files whose extension matches
// (case-insensitively), skips hidden and excluded directories, and returns
// the matches sorted so that suites run in a deterministic order. Errors on
// individual entries are collected rather than aborting the walk.
//
// Example:
//
//	result, err := fileutil.ScanDirectory("Test/Sema", fileutil.ScanOptions{
//		Extensions: []string{".py"},
//		Recursive:  true,
//	})
//	if err != nil {
//		return err
//	}
//	for _, file := range result.Files {
//		fmt.Println(file)
//	}
package fileutil
