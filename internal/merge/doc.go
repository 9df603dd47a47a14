// Package merge folds a version variant of an instrument into the
// existing template that already owns some of its item ids.
//
// The merge is a read-modify-write of one template file. Overlapping
// items keep their existing definition and gain the new version tag in
// ApplicableVersions; items only the new variant carries are copied in
// restricted to the new version. The template's declared versions and
// item count are updated and the file is overwritten in place, in its
// original encoding.
//
// Version names come from a caller-supplied VersionNamer. AutoNamer
// derives them from item counts and the source filename; batch callers
// use it instead of prompting. A merge without a namer fails with
// diagnostic.ErrNeedsMergeStrategy.
//
// Writers are serialized through an advisory "<template>.lock" file.
// A held lock is reported as ErrLocked; the merger never waits.
package merge
