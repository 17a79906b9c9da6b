// Package suite parses xpathspec suite files.
//
// A suite is a YAML document listing XPath assertions:
//
//	name: catalog
//	context: catalog.xml
//	namespaces:
//	  a: http://www.w3.org/2005/Atom
//	cases:
//	  - name: has entries
//	    expression: //a:entry
//	    match: true
//	  - name: three entries
//	    expression: //a:entry
//	    count: 3
//	  - name: inline data
//	    data: {foo: [21, 42]}
//	    expression: foo/_[1]
//	    equals: '<_ type="number">21</_>'
//
// Context files are resolved relative to the suite file and loaded by
// extension (LoadContext).
package suite
