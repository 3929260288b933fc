// Package compose converts between a single raw form value and the literal
// placeholder values it implies: merged values are split across their member
// placeholders and radio selections expand into one marked option plus empty
// siblings. Both directions are forgiving and never fail on partial input.
package compose
