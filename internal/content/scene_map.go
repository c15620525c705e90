package content

// characterSceneMap links character ids to the narrative scenes they
// appear in.  Scene prose itself lives in the database; this map only
// decides which scene ids a character page should query for.  Part 1
// scene 1 features the Death Squad at Golgotha; characters outside
// the squad enter in later parts and currently map to nothing.
var characterSceneMap = map[string][]string{
    "longinus": {"scene_1_1"},
    "brutus":   {"scene_1_1"},
    "corvus":   {"scene_1_1"},
    "horatius": {"scene_1_1"},
    "maximus":  {"scene_1_1"},
    "margaret": {},
    "salome":   {},
    "malchus":  {},
}

// SceneIDsForCharacter returns the scene ids a character appears in;
// nil for unknown characters or characters not yet in a published
// part.
func SceneIDsForCharacter(characterID string) []string {
    return characterSceneMap[characterID]
}
