// Package resolver discovers the newest published Cursor AppImage URL.
//
// Two interchangeable strategies implement the Resolver interface: "scrape"
// filters hyperlinks on the vendor download page against the fixed artifact
// pattern, "api" extracts the vendor's download API endpoint from the page
// and reads the artifact URL from its redirect metadata. The package also
// derives the version embedded in an artifact filename and defines the
// VersionProvider fallback used when derivation fails.
package resolver
