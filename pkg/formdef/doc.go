// Package formdef loads form definitions from JSON or YAML files.
//
// Each file declares one or more forms under a top-level "forms" key:
//
//	forms:
//	  user:
//	    entity: User
//	    title: User
//	    fields:
//	      - name: Id
//	        type: integer
//	        readOnly: true
//	      - name: name
//	        required: true
//	      - name: team
//	        kind: remote-select
//	        remote:
//	          entity: Team
//	          labelField: Name
//
// Form names must be unique across every file of the filesystem.
package formdef
