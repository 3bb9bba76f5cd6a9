package ui

// Prompt is the fixed shell prompt string (spec §6).
const Prompt = "dsh> "

// RenderPrompt renders the shell prompt in the theme's accent color.
func RenderPrompt() string {
	return PromptPathStyle.Render(Prompt)
}

// dragon is the decorative banner printed by the "dragon" built-in.
const dragon = `
                                     /===-_---~~~~~~~~~------____
                 ___---===============-  _                ~~-_
          __-~~~                                             ~~-_
       _-~~        ___========                      __---~~~~~  ~~-_
   _-~~     ___===~~~-_-====-       _---~~~~---__ ~~-_         ~-_
  =-_    _~~                ~-_   _-~~             ~-_ ~-_     ~~-_
   ~~--~~                  ~--~~~~~                  ~~-_~~-_     ~-_
                                                             ~~-_~~__
                                                               ~~--~~
`

// RenderDragon returns the colored decorative banner.
func RenderDragon() string {
	return DragonStyle.Render(dragon)
}
