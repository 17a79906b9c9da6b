// Package importer converts semi-structured values into typed XML trees so
// they can be queried with XPath.
//
// The mapping mirrors the JSON-to-XML convention used by XPath assertion
// libraries:
//
//	{"foo": [21, 42]}
//
// becomes
//
//	<_ type="object">
//	  <foo name="foo" type="array">
//	    <_ type="number">21</_>
//	    <_ type="number">42</_>
//	  </foo>
//	</_>
//
// Object keys are sanitized into element names (SanitizeName); the original
// key is kept in the name attribute. Array items and the root use the "_"
// placeholder tag. Import bounds recursion with a depth budget (WithMaxDepth).
package importer
