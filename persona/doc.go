// Package persona creates the synthetic participants of a hearing: the
// moderator, the petitioner, the residents and a council member. Casts are
// generated by a model call seeded with optional city research, with a fully
// specified default cast as the fallback so a simulation can always start.
package persona
