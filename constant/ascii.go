package constant

// AsciiArtLogo is shown at the top of the root command help.
const AsciiArtLogo = `
   ___  ___ ____  ___  _______ ___ _  ___ _
  / _ \/ _ '/ _ \/ _ \/ __/ _ '/  ' \/ _ '/
 / .__/\_,_/_//_/\___/_/  \_,_/_/_/_/\_,_/
/_/`
