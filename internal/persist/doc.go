// Package persist reads and writes project files.
//
// A project file has a <machine> root holding, in order:
//
//	<project .../>                       free-form attributes
//	<session working_image="...">        loaded images
//	  <thumb source_path="..."/>
//	</session>
//	<group name=".." color=".." width=".." height="..">
//	  <region x y x2 y2 width height source/>
//	</group>
//	<sequence name="..">                 one crop_to_key step per region
//	  <step call="crop_to_key"><argument value description/>...</step>
//	</sequence>
//	<rule source destination result><parameter symbol values/></rule>
//	<category name color rough_amount rough_amount_start rough_amount_end rough_order/>
//
// Each group is followed by its sequence. Sequences are derived data and are
// ignored when reading. Name to color defaults live in a separate
// <defaults> file.
//
// Decoding is lenient: elements are found at any depth, a region with
// unparseable attributes is skipped, and a bad color or number falls back
// to a default rather than failing the file.
package persist
